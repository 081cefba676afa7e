package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pocketschool/internal/flagx"
	"github.com/dmitrijs2005/pocketschool/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "1h" or integer
// nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	GRPCAddr       string         `json:"grpc_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	CORSOrigins    []string       `json:"cors_origins"`
	RedisAddr      string         `json:"redis_addr"`
	RegisterLimit  int            `json:"register_limit"`
	LoginLimit     int            `json:"login_limit"`
	RateWindow     timex.Duration `json:"rate_window"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	PresignTTL     timex.Duration `json:"presign_ttl"`
	LogFormat      string         `json:"log_format"`
	LogLevel       string         `json:"log_level"`
	EnvFile        string         `json:"env_file"`
}

// parseJson overlays cfg with the JSON file named by -c / -config. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.GRPCAddr, c.GRPCAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.RedisAddr, c.RedisAddr)
	setString(&cfg.S3RootUser, c.S3RootUser)
	setString(&cfg.S3RootPassword, c.S3RootPassword)
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&cfg.LogFormat, c.LogFormat)
	setString(&cfg.LogLevel, c.LogLevel)
	setString(&cfg.EnvFile, c.EnvFile)

	if len(c.CORSOrigins) > 0 {
		cfg.CORSOrigins = c.CORSOrigins
	}
	if c.RegisterLimit > 0 {
		cfg.RegisterLimit = c.RegisterLimit
	}
	if c.LoginLimit > 0 {
		cfg.LoginLimit = c.LoginLimit
	}
	if c.TokenTTL.Duration > 0 {
		cfg.TokenTTL = c.TokenTTL.Duration
	}
	if c.RateWindow.Duration > 0 {
		cfg.RateWindow = c.RateWindow.Duration
	}
	if c.PresignTTL.Duration > 0 {
		cfg.PresignTTL = c.PresignTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
