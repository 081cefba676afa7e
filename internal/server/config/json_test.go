package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":        ":9090",
		"database_dsn":     "postgres://x",
		"secret_key":       "my_secret_key",
		"token_ttl":        "30m",
		"cors_origins":     []string{"http://a", "http://b"},
		"redis_addr":       "redis:6379",
		"login_limit":      5,
		"rate_window":      "1m",
		"s3_bucket":        "exports",
		"s3_base_endpoint": "http://minio:9000",
		"presign_ttl":      "5m",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":9090", cfg.HTTPAddr)
		assert.Equal(t, ":50051", cfg.GRPCAddr, "absent keys keep defaults")
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSOrigins)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 5, cfg.LoginLimit)
		assert.Equal(t, 10, cfg.RegisterLimit)
		assert.Equal(t, time.Minute, cfg.RateWindow)
		assert.Equal(t, "exports", cfg.S3Bucket)
		assert.Equal(t, "http://minio:9000", cfg.S3BaseEndpoint)
		assert.Equal(t, 5*time.Minute, cfg.PresignTTL)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", TokenTTL: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
