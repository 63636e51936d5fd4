// Package config loads runtime configuration for the filedrop CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the filedrop HTTP API
//	-d string   sqlite DSN of the local client database
//	-t string   chunk transport: "binary" or "base64"
//	-s int      sync interval (seconds)
//	-p int      status poll interval (seconds)
//	-r int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:3000/api",
//	  "database_dsn": "filedrop.db",
//	  "chunk_transport": "binary",
//	  "sync_interval": "30s"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the client
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
