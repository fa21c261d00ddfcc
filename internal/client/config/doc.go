// Package config loads runtime configuration for the GophForum CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c / --config.
//  3. Command-line flags -a (server), -s (state file), -t (timeout).
//
// The JSON loader uses timex.Duration, so the timeout may be a string like
// "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "state_path": "gophforum-client.db",
//	  "timeout": "10s"
//	}
package config
