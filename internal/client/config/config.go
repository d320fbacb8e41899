package config

import "time"

// Config holds runtime settings for the supportdesk CLI.
//
// Fields:
//   - ServerURL: base URL of the API (scheme, host and optional path prefix).
//   - RequestTimeout: bound for every request attempt.
//   - RefreshTimeout: bound for a credential refresh.
//   - CredentialsDB: path of the SQLite file keeping the credential pair;
//     empty keeps credentials in memory only.
//   - PingInterval: how often the CLI probes server reachability.
//   - Verbose: enables debug logging.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	CredentialsDB  string
	PingInterval   time.Duration
	Verbose        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.CredentialsDB = "credentials.db"
	c.PingInterval = 15 * time.Second
	c.Verbose = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
