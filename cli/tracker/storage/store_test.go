package storage

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/daniil11ru/geotrack/libs/geo"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSaver implements the Saver interface for testing.
type mockSaver struct {
	mu    sync.Mutex
	saved []string
	err   error
	delay time.Duration
}

func (ms *mockSaver) Save(data interface{ ToBytes() ([]byte, error) }) error {
	time.Sleep(ms.delay)

	b, err := data.ToBytes()
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.saved = append(ms.saved, string(b))
	return ms.err
}

func (ms *mockSaver) Saved() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.saved...)
}

// testData is a simple struct for testing the Save method.
type testData string

func (td testData) ToBytes() ([]byte, error) {
	return []byte(td), nil
}

func TestRepository_SaveFanOut(t *testing.T) {
	log.SetOutput(io.Discard)

	first := &mockSaver{}
	second := &mockSaver{}

	repo := NewRepository()
	assert.True(t, repo.Empty())
	repo.AddStore(first)
	repo.AddStore(second)
	assert.False(t, repo.Empty())

	require.NoError(t, repo.Save(testData("leg")))
	assert.Equal(t, []string{"leg"}, first.Saved())
	assert.Equal(t, []string{"leg"}, second.Saved())
}

func TestRepository_SaveContinuesAfterError(t *testing.T) {
	failing := &mockSaver{err: errors.New("boom")}
	healthy := &mockSaver{}

	repo := NewRepository()
	repo.AddStore(failing)
	repo.AddStore(healthy)

	err := repo.Save(testData("leg"))
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"leg"}, healthy.Saved())
}

func TestRepository_LoadStorages(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.LoadStorages(nil))
	assert.True(t, repo.Empty())

	err := repo.LoadStorages(map[string]map[string]string{"clickhouse": {}})
	assert.ErrorIs(t, err, ErrUnknownStorage)
}

func TestRepository_LoadStoragesClosesOpenedOnError(t *testing.T) {
	s := miniredis.RunT(t)

	repo := NewRepository()
	err := repo.LoadStorages(map[string]map[string]string{
		"redis":     {"host": s.Host(), "port": s.Port()},
		"tarantool": {},
	})
	assert.ErrorIs(t, err, ErrUnknownStorage)
	assert.True(t, repo.Empty())

	assert.Eventually(t, func() bool {
		return s.CurrentConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRepository_LoadStoragesUnreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	repo := NewRepository()
	err = repo.LoadStorages(map[string]map[string]string{
		"redis": {"host": host, "port": port},
	})
	assert.Error(t, err)
	assert.True(t, repo.Empty())
}

func TestAsyncRepository_DrainsOnClose(t *testing.T) {
	log.SetOutput(io.Discard)

	saver := &mockSaver{delay: time.Millisecond}
	async := NewAsyncRepository(saver, 2, 1)

	want := []string{"1", "2", "3", "4", "5"}
	for _, m := range want {
		require.NoError(t, async.Save(testData(m)))
	}
	async.Close()

	assert.Equal(t, want, saver.Saved())
	assert.ErrorIs(t, async.Save(testData("late")), ErrRepositoryClosed)

	async.Close()
}

func TestAsyncRepository_LogsSaveErrors(t *testing.T) {
	log.SetOutput(io.Discard)

	saver := &mockSaver{err: errors.New("db down")}
	async := NewAsyncRepository(saver, 1, 0)

	require.NoError(t, async.Save(testData("x")))
	async.Close()

	assert.Equal(t, []string{"x"}, saver.Saved())
}

func TestLeg_ToBytes(t *testing.T) {
	leg := Leg{
		From:            geo.NewCoordinate(0, 0),
		To:              geo.NewCoordinate(0, 1),
		DistanceKm:      111.2,
		TotalDistanceKm: 222.4,
		RecordedAt:      time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
	}

	b, err := leg.ToBytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": {"latitude": 0, "longitude": 0},
		"to": {"latitude": 0, "longitude": 1},
		"distance_km": 111.2,
		"total_distance_km": 222.4,
		"recorded_at": "2024-05-01T12:00:00Z"
	}`, string(b))
}
