package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestApp_RunsInMemoryAndShutsDown(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = freeAddr(t)
	cfg.GRPCAddr = freeAddr(t)
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	url := fmt.Sprintf("http://%s/api/v1/health", cfg.HTTPAddr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 25*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestNewApp_UnknownLogFormat(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogFormat = "xml"

	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}
