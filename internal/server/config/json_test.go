package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":         "www.example:9000",
		"metrics_addr":               "",
		"database_driver":            "pgx",
		"database_dsn":               "postgres://forum",
		"session_ttl":                "48h",
		"token_length":               24,
		"resolve_requires_unexpired": false,
		"hash_time":                  2,
		"hash_memory_kib":            19456,
		"hash_threads":               1,
		"login_rate_per_minute":      5,
		"login_burst":                2,
		"request_timeout":            2000000000,
		"log_level":                  "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "", cfg.MetricsAddr)
		assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
		assert.Equal(t, "postgres://forum", cfg.DatabaseDSN)
		assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 24, cfg.TokenLength)
		assert.False(t, cfg.ResolveRequiresUnexpired)
		assert.Equal(t, uint32(2), cfg.HashTime)
		assert.Equal(t, uint32(19456), cfg.HashMemoryKiB)
		assert.Equal(t, uint8(1), cfg.HashThreads)
		assert.Equal(t, 5.0, cfg.LoginRatePerMinute)
		assert.Equal(t, 2, cfg.LoginBurst)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"database_dsn": "other.db"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other.db", cfg.DatabaseDSN)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, ":9100", cfg.MetricsAddr)
		assert.True(t, cfg.ResolveRequiresUnexpired)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SessionTTL: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
