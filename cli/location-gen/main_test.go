package main

import (
	"flag"
	"io"
	"testing"

	"github.com/daniil11ru/geotrack/cli/tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("location-gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags(newFlagSet(), []string{"-c", "config.yaml", "-lat", "0", "-lon", "-74.5", "-topic", "positions"})
	require.NoError(t, err)
	assert.Equal(t, options{configPath: "config.yaml", latitude: 0, longitude: -74.5, topic: "positions"}, o)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := [][]string{
		{"-lat", "1", "-lon", "2"},
		{"-c", "config.yaml", "-lat", "1"},
		{"-c", "config.yaml", "-lon", "1"},
		{"-c", "config.yaml", "-lat", "north", "-lon", "1"},
	}

	for _, args := range tests {
		_, err := parseFlags(newFlagSet(), args)
		assert.Error(t, err, "%v", args)
	}
}

func TestPublish(t *testing.T) {
	settings := config.Settings{
		Topic:  "locations",
		Codec:  "json",
		Broker: map[string]map[string]string{"memory": {}},
	}

	position, err := publish(options{latitude: 1, longitude: 2}, settings)
	require.NoError(t, err)
	assert.Equal(t, 1.0, position.Latitude)
	assert.Equal(t, 2.0, position.Longitude)

	settings.Codec = "xml"
	_, err = publish(options{latitude: 1, longitude: 2}, settings)
	assert.Error(t, err)

	settings.Codec = "json"
	settings.Broker = nil
	_, err = publish(options{latitude: 1, longitude: 2}, settings)
	assert.Error(t, err)
}
