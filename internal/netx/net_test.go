package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			_, _ = w.Write([]byte(`{"version":"2.0"}`))
		}))
		defer ts.Close()

		body, err := Download(ctx, ts.URL+"/exports/u1/x.json?X-Amz-Signature=abc")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, gotMethod)
		assert.Equal(t, `{"version":"2.0"}`, string(body))
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
		}))
		defer ts.Close()

		_, err := Download(ctx, ts.URL)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "download failed: 403"))
		assert.Contains(t, err.Error(), "AccessDenied")
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := Download(ctx, ts.URL)
		require.Error(t, err)
	})
}

func TestDownloadToFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archived"))
	}))
	defer ok.Close()

	path := filepath.Join(dir, "export.json")
	require.NoError(t, DownloadToFile(ctx, ok.URL, path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archived", string(got))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	missing := filepath.Join(dir, "never.json")
	require.Error(t, DownloadToFile(ctx, bad.URL, missing))
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
