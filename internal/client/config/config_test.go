package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000/api", c.ServerBaseURL)
	assert.Equal(t, "filedrop.db", c.DatabaseDSN)
	assert.Equal(t, TransportBinary, c.ChunkTransport)
	assert.Equal(t, 30*time.Second, c.SyncInterval)
	assert.Equal(t, 60*time.Second, c.StatusPollInterval)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:3000/api", cfg.ServerBaseURL)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}
