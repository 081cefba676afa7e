package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api/v1", c.APIBaseURL)
	assert.Empty(t, c.HealthAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "pocketschool.db", c.DBPath)
	assert.Equal(t, "slog", c.LogFormat)
}

func TestLoadConfig_LayersJSONThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url": "http://json:1",
		"db_path":      "json.db",
	})
	os.Args = []string{"cli", "-c", path, "-d", "flag.db"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "http://json:1", cfg.APIBaseURL)
	assert.Equal(t, "flag.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}
