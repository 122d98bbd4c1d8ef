package tarantool_queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(map[string]string{
		"max_recons": "5",
		"timeout":    "2",
		"reconnect":  "1",
		"user":       "tracker",
		"password":   "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), opts.MaxReconnects)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, time.Second, opts.Reconnect)
	assert.Equal(t, "tracker", opts.User)
	assert.Equal(t, "secret", opts.Pass)
}

func TestParseOptions_Errors(t *testing.T) {
	tests := []map[string]string{
		{"timeout": "1", "reconnect": "1"},
		{"max_recons": "5", "timeout": "x", "reconnect": "1"},
		{"max_recons": "5", "timeout": "1"},
	}

	for _, cfg := range tests {
		_, err := parseOptions(cfg)
		assert.Error(t, err, "%v", cfg)
	}
}

func TestTaskPayload(t *testing.T) {
	p, ok := taskPayload([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), p)

	p, ok = taskPayload("b")
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), p)

	_, ok = taskPayload(map[string]interface{}{"x": 1})
	assert.False(t, ok)
}

func TestConnector_InitNilConfig(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Init(nil))
	assert.NoError(t, c.Close())
}
