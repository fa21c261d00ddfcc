package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophforum/internal/flagx"
	"github.com/dmitrijs2005/gophforum/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Pointer and
// zero-valued fields leave the corresponding Config value untouched.
type JsonConfig struct {
	EndpointAddrGRPC         string         `json:"endpoint_addr_grpc"`
	MetricsAddr              *string        `json:"metrics_addr"`
	DatabaseDriver           string         `json:"database_driver"`
	DatabaseDSN              string         `json:"database_dsn"`
	SessionTTL               timex.Duration `json:"session_ttl"`
	TokenLength              int            `json:"token_length"`
	ResolveRequiresUnexpired *bool          `json:"resolve_requires_unexpired"`
	HashTime                 uint32         `json:"hash_time"`
	HashMemoryKiB            uint32         `json:"hash_memory_kib"`
	HashThreads              uint8          `json:"hash_threads"`
	LoginRatePerMinute       float64        `json:"login_rate_per_minute"`
	LoginBurst               int            `json:"login_burst"`
	RequestTimeout           timex.Duration `json:"request_timeout"`
	LogLevel                 string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing is loaded. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.TokenLength > 0 {
		config.TokenLength = c.TokenLength
	}
	if c.ResolveRequiresUnexpired != nil {
		config.ResolveRequiresUnexpired = *c.ResolveRequiresUnexpired
	}
	if c.HashTime > 0 {
		config.HashTime = c.HashTime
	}
	if c.HashMemoryKiB > 0 {
		config.HashMemoryKiB = c.HashMemoryKiB
	}
	if c.HashThreads > 0 {
		config.HashThreads = c.HashThreads
	}
	if c.LoginRatePerMinute > 0 {
		config.LoginRatePerMinute = c.LoginRatePerMinute
	}
	if c.LoginBurst > 0 {
		config.LoginBurst = c.LoginBurst
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
