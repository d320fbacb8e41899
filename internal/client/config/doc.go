// Package config loads runtime configuration for the supportdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API
//	-t int      request timeout (seconds)
//	-r int      refresh timeout (seconds)
//	-d string   credentials database file ("" keeps credentials in memory)
//	-i int      reachability check interval (seconds)
//	-v          verbose (debug) logging
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be either strings like "5s" or
// integer nanoseconds. Missing keys keep their default:
//
//	{
//	  "server_url": "https://desk.example.com",
//	  "request_timeout": "5s",
//	  "refresh_timeout": "10s",
//	  "credentials_db": "/var/lib/supportdesk/credentials.db",
//	  "ping_interval": "30s",
//	  "verbose": true
//	}
package config
