package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophforum/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-m string   metrics/health bind address, "" disables
//	-D string   database driver: sqlite | pgx
//	-d string   database DSN
//	-t int      session lifetime, minutes
//	-k int      session token length
//	-l float    login attempts per minute per client
//	-b int      login burst
//	-v string   log level: debug | info | warn | error
//
// os.Args is filtered with flagx.FilterArgs first, so -c and -env-file
// handled by the other loaders do not trip this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-D", "-d", "-t", "-k", "-l", "-b", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address of the metrics and health endpoint")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (sqlite or pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")
	fs.IntVar(&config.TokenLength, "k", config.TokenLength, "session token length")
	fs.Float64Var(&config.LoginRatePerMinute, "l", config.LoginRatePerMinute, "login attempts per minute per client")
	fs.IntVar(&config.LoginBurst, "b", config.LoginBurst, "login burst")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}
