package config

import "time"

// Config holds runtime settings for the GophForum CLI.
type Config struct {
	ServerEndpointAddr string
	StatePath          string
	Timeout            time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.StatePath = "gophforum-client.db"
	c.Timeout = 10 * time.Second
}

// Load builds a Config from defaults overlaid with the JSON file at path.
// An empty path skips the file. Command-line flags are applied by the
// caller on top of the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
