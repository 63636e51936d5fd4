package config

import "time"

// Chunk transport capabilities, selected once at startup. A binary transport
// sends raw chunk bytes in the multipart payload; a text-only transport sends
// base64 text with an isBase64 marker.
const (
	TransportBinary = "binary"
	TransportBase64 = "base64"
)

// Config holds runtime settings for the filedrop CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the filedrop HTTP API.
//   - DatabaseDSN: sqlite DSN of the local client database.
//   - ChunkTransport: "binary" or "base64" chunk payload encoding.
//   - SyncInterval: how often upload history is reconciled with the server.
//   - StatusPollInterval: how often active uploads are polled for status.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerBaseURL      string
	DatabaseDSN        string
	ChunkTransport     string
	SyncInterval       time.Duration
	StatusPollInterval time.Duration
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:3000/api"
	c.DatabaseDSN = "filedrop.db"
	c.ChunkTransport = TransportBinary
	c.SyncInterval = 30 * time.Second
	c.StatusPollInterval = 60 * time.Second
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
