package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "db", "-k", "secret", "-t", "90",
				"-r", "redis:6379", "-o", "http://a,http://b", "-u", "user", "-p", "password",
				"-b", "bucket", "-e", "http://endpoint", "-l", "zap",
			},
			expected: &Config{
				HTTPAddr:       "127.0.0.1:9090",
				GRPCAddr:       ":6000",
				DatabaseDSN:    "db",
				SecretKey:      "secret",
				TokenTTL:       90 * time.Minute,
				RedisAddr:      "redis:6379",
				CORSOrigins:    []string{"http://a", "http://b"},
				S3RootUser:     "user",
				S3RootPassword: "password",
				S3Bucket:       "bucket",
				S3BaseEndpoint: "http://endpoint",
				LogFormat:      "zap",
			},
		},
		{
			name:        "bad int",
			args:        []string{"cmd", "-t", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
