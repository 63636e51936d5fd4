package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://files.local/api", "-d", "client.db", "-t", "base64", "-s", "10", "-p", "20", "-r", "5"}, expectPanic: false,
			expected: &Config{ServerBaseURL: "http://files.local/api", DatabaseDSN: "client.db", ChunkTransport: TransportBase64,
				SyncInterval: 10 * time.Second, StatusPollInterval: 20 * time.Second, RequestTimeout: 5 * time.Second}},
		{name: "Test2 incorrect sync interval", args: []string{"cmd", "-a", "http://files.local/api", "-s", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
