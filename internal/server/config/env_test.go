package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Variables(t *testing.T) {
	t.Setenv("POCKETSCHOOL_DATABASE_DSN", "postgres://env")
	t.Setenv("POCKETSCHOOL_CORS_ORIGINS", "http://a, http://b ,")
	t.Setenv("POCKETSCHOOL_TOKEN_TTL", "2h")
	t.Setenv("POCKETSCHOOL_REGISTER_LIMIT", "3")

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.EnvFile = ""
	parseEnv(cfg)

	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RegisterLimit)
	assert.Equal(t, 20, cfg.LoginLimit)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("POCKETSCHOOL_REDIS_ADDR=redis:6379\nPOCKETSCHOOL_S3_BUCKET=from-file\n"), 0o600))
	t.Setenv("POCKETSCHOOL_S3_BUCKET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("POCKETSCHOOL_REDIS_ADDR") })

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.EnvFile = path
	parseEnv(cfg)

	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "from-env", cfg.S3Bucket, "process environment wins over the file")
}

func TestParseEnv_MissingFileIgnored(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.EnvFile = filepath.Join(t.TempDir(), "absent.env")

	require.NotPanics(t, func() { parseEnv(cfg) })
}
