package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables: the JSON key "database_dsn"
// is read from POCKETSCHOOL_DATABASE_DSN.
const EnvPrefix = "POCKETSCHOOL"

// parseEnv loads cfg.EnvFile (if it exists) into the process environment and
// overlays cfg with every POCKETSCHOOL_* variable that is set. Variables
// already present in the environment win over the file. A malformed env file
// panics, like a malformed JSON config.
func parseEnv(cfg *Config) {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	str("http_addr", &cfg.HTTPAddr)
	str("grpc_addr", &cfg.GRPCAddr)
	str("database_dsn", &cfg.DatabaseDSN)
	str("secret_key", &cfg.SecretKey)
	str("redis_addr", &cfg.RedisAddr)
	str("s3_root_user", &cfg.S3RootUser)
	str("s3_root_password", &cfg.S3RootPassword)
	str("s3_bucket", &cfg.S3Bucket)
	str("s3_region", &cfg.S3Region)
	str("s3_base_endpoint", &cfg.S3BaseEndpoint)
	str("log_format", &cfg.LogFormat)
	str("log_level", &cfg.LogLevel)

	if s := v.GetString("cors_origins"); s != "" {
		cfg.CORSOrigins = splitList(s)
	}
	if n := v.GetInt("register_limit"); n > 0 {
		cfg.RegisterLimit = n
	}
	if n := v.GetInt("login_limit"); n > 0 {
		cfg.LoginLimit = n
	}
	if d := v.GetDuration("token_ttl"); d > 0 {
		cfg.TokenTTL = d
	}
	if d := v.GetDuration("rate_window"); d > 0 {
		cfg.RateWindow = d
	}
	if d := v.GetDuration("presign_ttl"); d > 0 {
		cfg.PresignTTL = d
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
