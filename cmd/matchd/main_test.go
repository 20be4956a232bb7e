package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigFile(t *testing.T) {
	cfg, err := parseConfig([]string{"-config", "testdata/conf/matchd.yaml", "-h", ":7070"})
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTPPort, "flag should win")
	require.True(t, cfg.WebSockets)
	require.Equal(t, 30*time.Second, cfg.TTL)
	require.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	require.Equal(t, "decisions", cfg.MQTT.ResponseTopic)
	require.Equal(t, "matchbox/requests", cfg.MQTT.RequestTopics, "default should survive")
}

func TestParseConfigErrors(t *testing.T) {
	_, err := parseConfig([]string{"-config", "testdata/conf/nope.yaml"})
	require.Error(t, err)
	_, err = parseConfig([]string{"-bogus"})
	require.Error(t, err)
}

func TestMakeService(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.StoreFile = filepath.Join(t.TempDir(), "specs.db")
	cfg.SpecDir = "testdata"

	s, err := makeService(ctx, cfg)
	require.NoError(t, err)
	names, err := s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"signals"}, names)
	require.NoError(t, s.Storage.Close(ctx))

	// The bolt file keeps the specs.
	cfg.SpecDir = ""
	s, err = makeService(ctx, cfg)
	require.NoError(t, err)
	defer s.Storage.Close(ctx)
	_, err = s.GetSpec(ctx, "signals")
	require.NoError(t, err)
}
