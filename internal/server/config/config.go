// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables (with .env support) and
// command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the PocketSchool server.
//
// Fields:
//   - HTTPAddr: bind address of the REST API.
//   - GRPCAddr: bind address of the gRPC health endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all data in memory.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - TokenTTL: access token lifetime.
//   - CORSOrigins: allowed browser origins; "*" allows any.
//   - RedisAddr: Redis used by the rate limiter; empty uses an in-process limiter.
//   - RegisterLimit / LoginLimit per RateWindow and client IP.
//   - S3*: object storage for archived exports; an empty bucket disables archiving.
//   - PresignTTL: lifetime of export download URLs.
//   - EnvFile: dotenv file loaded before reading the environment.
type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	DatabaseDSN    string
	SecretKey      string
	TokenTTL       time.Duration
	CORSOrigins    []string
	RedisAddr      string
	RegisterLimit  int
	LoginLimit     int
	RateWindow     time.Duration
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	PresignTTL     time.Duration
	LogFormat      string
	LogLevel       string
	EnvFile        string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "dev-secret-key-change-in-production"
	c.TokenTTL = time.Hour
	c.CORSOrigins = []string{"*"}
	c.RedisAddr = ""
	c.RegisterLimit = 10
	c.LoginLimit = 20
	c.RateWindow = time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.PresignTTL = 15 * time.Minute
	c.LogFormat = "slog"
	c.LogLevel = "info"
	c.EnvFile = ".env"
}

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
