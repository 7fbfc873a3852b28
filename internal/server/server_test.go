package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/gauntlet/internal/config"
	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/logbook"
)

func readPoem(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/poem.txt")
	require.NoError(t, err)
	return string(data)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Project.Server.Host = "0.0.0.0"
	cfg.Project.Server.Port = 9001
	settings := SettingsFromConfig(cfg)
	assert.Equal(t, "0.0.0.0", settings.Host)
	assert.Equal(t, 9001, settings.Port)
	assert.Equal(t, DefaultReadTimeout, settings.ReadTimeout)
	assert.Equal(t, "http://0.0.0.0:9001", settings.URL())

	settings = SettingsFromConfig(nil)
	assert.Equal(t, DefaultHost, settings.Host)
	assert.Equal(t, DefaultPort, settings.Port)
	assert.Equal(t, DefaultMaxBodyBytes, settings.MaxBodyBytes)
}

func TestValidateEndpoint(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "history.log"))
	require.NoError(t, err)
	srv := New(Settings{}, gauntlet.New(), WithHistory(book))
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/validate?name=entry.md", strings.NewReader(readPoem(t)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, true, decoded["ok"])
	assert.Equal(t, "entry.md", decoded["path"])
	assert.Len(t, decoded["poem"], 12)

	lines, total := book.Tail(1)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], "ok     entry.md")
}

func TestValidateEndpointFailingDocument(t *testing.T) {
	srv := New(Settings{}, gauntlet.New())
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("just one line\n"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, false, decoded["ok"])
	assert.Equal(t, map[string]any{}, decoded["details"])
	assert.NotContains(t, decoded, "path")
}

func TestValidateEndpointRejects(t *testing.T) {
	srv := New(Settings{MaxBodyBytes: 16}, gauntlet.New())
	handler := srv.Handler()

	cases := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "wrong method", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "too large", method: http.MethodPost, body: strings.Repeat("x", 64), status: http.StatusRequestEntityTooLarge},
		{name: "bad encoding", method: http.MethodPost, body: "\xff\xfe", status: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/validate", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	fixed := time.Unix(1730000000, 0).UTC()
	settings := Settings{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := New(settings, gauntlet.New(), WithClock(func() time.Time { return fixed }))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	require.Equal(t, StatusStarting, srv.Status())
	require.NoError(t, srv.Start(context.Background()))
	require.Error(t, srv.Start(context.Background()))
	assert.Equal(t, StatusReady, srv.Status())

	resp, err := http.Get(srv.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ready", health.Status)
	assert.Equal(t, "VILLAGECODES", health.Acrostic)
	assert.Equal(t, "heuristic", health.Phonetics)
	assert.Equal(t, "2024-10-27T03:33:20Z", health.ServerTime)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, StatusDraining, srv.Status())
	assert.Empty(t, srv.Addr())
}
