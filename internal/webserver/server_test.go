package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbench/trialbench/internal/catalog"
	"github.com/trialbench/trialbench/internal/workflow"
)

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)
	orch := workflow.New(cat)
	t.Cleanup(func() { orch.Close() }) //nolint:errcheck

	cfg.Orchestrator = orch
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv.Handler()
}

func TestNew_RequiresOrchestrator(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSessionEndpoint(t *testing.T) {
	handler := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "idle", body["phase"])
}

func TestUnknownAPIPathReturnsJSON404(t *testing.T) {
	handler := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonsense", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown endpoint")
}

func TestGzipNegotiation(t *testing.T) {
	handler := newTestServer(t, Config{})

	// The full example document is comfortably above the gzip minimum size.
	req := httptest.NewRequest(http.MethodGet, "/api/examples/valor-trial", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestCORSConfigured(t *testing.T) {
	handler := newTestServer(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaults(t *testing.T) {
	cat, err := catalog.Load()
	require.NoError(t, err)
	orch := workflow.New(cat)
	t.Cleanup(func() { orch.Close() }) //nolint:errcheck

	srv, err := New(Config{Orchestrator: orch})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8950", srv.Addr())
}
