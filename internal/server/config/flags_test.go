package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-m", ":9200", "-D", "pgx", "-d", "db",
				"-t", "60", "-k", "40", "-l", "12.5", "-b", "3", "-v", "debug",
			},
			expected: &Config{
				EndpointAddrGRPC:   "127.0.0.1:9090",
				MetricsAddr:        ":9200",
				DatabaseDriver:     "pgx",
				DatabaseDSN:        "db",
				SessionTTL:         time.Hour,
				TokenLength:        40,
				LoginRatePerMinute: 12.5,
				LoginBurst:         3,
				LogLevel:           "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "conf.json", "-env-file", "x.env", "-d", "db"},
			expected: &Config{DatabaseDSN: "db"},
		},
		{
			name:        "bad integer",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
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
