package config

import "time"

// Config holds runtime settings for the unicampus CLI.
//
// Fields:
//   - BaseURL: root URL of the university backend API.
//   - RequestTimeout: per-request timeout for regular API calls.
//   - RefreshTimeout: upper bound for a credential refresh; when it fires
//     the refresh is treated as failed and every queued request is released.
//   - StorePath: path to the local secure-store database file.
//   - LogLevel: debug|info|warn|error.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	StorePath      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 15 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.StorePath = "unicampus.db"
	c.LogLevel = "info"
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
