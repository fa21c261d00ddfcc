package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gophforum/internal/flagx"
)

const envPrefix = "GOPHFORUM_"

// parseEnv loads the dotenv file named by -env-file (".env" when absent; a
// missing default file is ignored) and then applies GOPHFORUM_* variables.
// Variables already present in the process environment win over the file.
// A malformed value panics, like the other loaders.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags()
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		return lookup(envPrefix + name)
	}

	if v, ok := get("GRPC_ADDR"); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := get("METRICS_ADDR"); ok {
		config.MetricsAddr = v
	}
	if v, ok := get("DATABASE_DRIVER"); ok {
		config.DatabaseDriver = v
	}
	if v, ok := get("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		config.LogLevel = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"SESSION_TTL", &config.SessionTTL},
		{"REQUEST_TIMEOUT", &config.RequestTimeout},
	}
	for _, d := range durations {
		v, ok := get(d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, d.name, err)
		}
		*d.dst = parsed
	}

	if v, ok := get("TOKEN_LENGTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_LENGTH: %w", envPrefix, err)
		}
		config.TokenLength = n
	}
	if v, ok := get("LOGIN_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLOGIN_BURST: %w", envPrefix, err)
		}
		config.LoginBurst = n
	}
	if v, ok := get("LOGIN_RATE_PER_MINUTE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sLOGIN_RATE_PER_MINUTE: %w", envPrefix, err)
		}
		config.LoginRatePerMinute = f
	}
	if v, ok := get("RESOLVE_REQUIRES_UNEXPIRED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sRESOLVE_REQUIRES_UNEXPIRED: %w", envPrefix, err)
		}
		config.ResolveRequiresUnexpired = b
	}

	uints := []struct {
		name string
		bits int
		set  func(uint64)
	}{
		{"HASH_TIME", 32, func(u uint64) { config.HashTime = uint32(u) }},
		{"HASH_MEMORY_KIB", 32, func(u uint64) { config.HashMemoryKiB = uint32(u) }},
		{"HASH_THREADS", 8, func(u uint64) { config.HashThreads = uint8(u) }},
	}
	for _, u := range uints {
		v, ok := get(u.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseUint(v, 10, u.bits)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, u.name, err)
		}
		u.set(parsed)
	}

	return nil
}
