package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":9100", c.MetricsAddr)
	assert.Equal(t, DriverSQLite, c.DatabaseDriver)
	assert.Contains(t, c.DatabaseDSN, "foreign_keys(1)")
	assert.Equal(t, 10*24*time.Hour, c.SessionTTL)
	assert.Equal(t, 32, c.TokenLength)
	assert.True(t, c.ResolveRequiresUnexpired)
	assert.Equal(t, uint32(1), c.HashTime)
	assert.Equal(t, uint32(65536), c.HashMemoryKiB)
	assert.Equal(t, uint8(4), c.HashThreads)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_grpc": ":7000",
		"session_ttl":        "1h",
	})
	os.Args = []string{"testbin", "-c", path, "-a", ":8000"}

	c := LoadConfig()
	assert.Equal(t, ":8000", c.EndpointAddrGRPC)
	assert.Equal(t, time.Hour, c.SessionTTL)
}
