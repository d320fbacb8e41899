package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only -a, -t, -r, -d, -i and -v are considered; os.Args is filtered with
// flagx.FilterArgs so that flags of other components do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-d", "-i"}, "-v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refreshTimeout := fs.Int("r", int(cfg.RefreshTimeout.Seconds()), "refresh timeout (in seconds)")
	fs.StringVar(&cfg.CredentialsDB, "d", cfg.CredentialsDB, "credentials database file")
	pingInterval := fs.Int("i", int(cfg.PingInterval.Seconds()), "reachability check interval (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.RefreshTimeout = time.Duration(*refreshTimeout) * time.Second
	cfg.PingInterval = time.Duration(*pingInterval) * time.Second
}
