package config

import "time"

// Config holds runtime settings for the PocketSchool CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API; the versioned prefix is added if missing.
//   - HealthAddr: host:port of the server's gRPC health endpoint. Empty means
//     reachability is probed through the REST API instead.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request HTTP timeout.
//   - DBPath: local SQLite file with cached records and queued changes.
//   - LogFormat, LogLevel: logger selection ("slog" or "zap").
type Config struct {
	APIBaseURL          string
	HealthAddr          string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	DBPath              string
	LogFormat           string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api/v1"
	c.HealthAddr = ""
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.DBPath = "pocketschool.db"
	c.LogFormat = "slog"
	c.LogLevel = "warn"
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
