package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpm/internal/core"
)

func newFindServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPRegistryFindPackage(t *testing.T) {
	server := newFindServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/find/foo/%5E1.0.0", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "foo", "version": "1.2.0"})
	})
	adapter := NewHTTPRegistryAdapter("default", server.URL, "", "", 0)

	selector, err := core.ParseSelector("^1.0.0")
	require.NoError(t, err)
	info, err := adapter.FindPackage(context.Background(), "foo", selector)
	require.NoError(t, err)
	assert.Equal(t, "foo", info.Name)
	assert.Equal(t, "1.2.0", info.Version)
}

func TestHTTPRegistryFindPackageNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http 404",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Package not found"})
			},
		},
		{
			name: "error field with 200",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Package not found"})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFindServer(t, tt.handler)
			adapter := NewHTTPRegistryAdapter("default", server.URL, "", "", 0)
			_, err := adapter.FindPackage(context.Background(), "foo", core.MatchAnySelector())
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
		})
	}
}

func TestHTTPRegistryFindPackageServerError(t *testing.T) {
	server := newFindServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "database down"})
	})
	adapter := NewHTTPRegistryAdapter("default", server.URL, "", "", 0)

	_, err := adapter.FindPackage(context.Background(), "foo", core.MatchAnySelector())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestHTTPRegistryFindPackageSendsBasicAuth(t *testing.T) {
	server := newFindServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "secret", pass)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "foo", "version": "1.0.0"})
	})
	adapter := NewHTTPRegistryAdapter("default", server.URL, "alice", "secret", 0)

	_, err := adapter.FindPackage(context.Background(), "foo", core.MatchAnySelector())
	require.NoError(t, err)
}

func TestHTTPRegistryDownload(t *testing.T) {
	payload := []byte("tarball bytes")
	server := newFindServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/download/foo/1.2.0/foo-1.2.0.tar.gz", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="foo-1.2.0.tar.gz"`)
		_, _ = w.Write(payload)
	})
	adapter := NewHTTPRegistryAdapter("default", server.URL, "", "", 0)

	stream, filename, err := adapter.Download(context.Background(), "foo", "1.2.0")
	require.NoError(t, err)
	defer stream.Close()
	assert.Equal(t, "foo-1.2.0.tar.gz", filename)

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHTTPRegistryDownloadError(t *testing.T) {
	server := newFindServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	adapter := NewHTTPRegistryAdapter("default", server.URL, "", "", 0)

	_, _, err := adapter.Download(context.Background(), "foo", "1.2.0")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}
