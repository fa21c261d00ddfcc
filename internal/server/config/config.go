// Package config handles configuration for the server component: defaults,
// a JSON overlay, environment variables (optionally from a .env file) and
// command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the GophForum server.
type Config struct {
	// EndpointAddrGRPC is the bind address of the public gRPC endpoint.
	EndpointAddrGRPC string
	// MetricsAddr serves /metrics and /healthz. Empty disables it.
	MetricsAddr string

	// DatabaseDriver is either "sqlite" (modernc) or "pgx" (PostgreSQL).
	DatabaseDriver string
	DatabaseDSN    string

	SessionTTL               time.Duration
	TokenLength              int
	ResolveRequiresUnexpired bool

	// argon2id cost parameters.
	HashTime      uint32
	HashMemoryKiB uint32
	HashThreads   uint8

	// Login attempts allowed per client address.
	LoginRatePerMinute float64
	LoginBurst         int

	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9100"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "file:gophforum.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	c.SessionTTL = 240 * time.Hour
	c.TokenLength = 32
	c.ResolveRequiresUnexpired = true
	c.HashTime = 1
	c.HashMemoryKiB = 64 * 1024
	c.HashThreads = 4
	c.LoginRatePerMinute = 30
	c.LoginBurst = 10
	c.RequestTimeout = 5 * time.Second
	c.LogLevel = "info"
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
