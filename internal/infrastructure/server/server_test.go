package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/filesystem"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	home := t.TempDir()
	sandbox, err := filesystem.NewSandboxWithRoots(home, os.TempDir(), nil)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	s, err := New(cfg, nil, Options{Sandbox: sandbox})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, home
}

func execute(t *testing.T, h http.Handler, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest("POST", "/services/execute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestRegistersAllServices(t *testing.T) {
	s, _ := newTestServer(t)

	ids := []string{}
	for _, svc := range s.Registry().List(nil) {
		ids = append(ids, svc.ID)
	}
	assert.Equal(t, []string{"filesystem", "system", "terminal", "worktree"}, ids)
}

func TestFilesystemRoundTrip(t *testing.T) {
	s, home := newTestServer(t)
	path := filepath.Join(home, "notes", "todo.txt")

	result := execute(t, s.Handler(), `{"tool_id":"filesystem.write_file","params":{"path":"`+path+`","content":"hello"}}`)
	assert.Equal(t, true, result["success"], result["error"])

	result = execute(t, s.Handler(), `{"tool_id":"filesystem.read_file","params":{"path":"`+path+`"}}`)
	assert.Equal(t, "hello", result["data"].(map[string]interface{})["content"])
}

func TestSystemInfoReportsSandboxRoots(t *testing.T) {
	s, home := newTestServer(t)

	result := execute(t, s.Handler(), `{"tool_id":"system.info"}`)
	require.Equal(t, true, result["success"], result["error"])
	data := result["data"].(map[string]interface{})
	canonical, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)
	assert.Equal(t, canonical, data["home"])
	assert.NotEmpty(t, data["default_shell"])
}

func TestSandboxViolationOverHTTP(t *testing.T) {
	s, _ := newTestServer(t)

	result := execute(t, s.Handler(), `{"tool_id":"filesystem.read_directory","params":{"path":"/etc"}}`)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "path must be within home directory")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	execute(t, s.Handler(), `{"tool_id":"filesystem.read_directory","params":{"path":"/etc"}}`)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `forkspace_sandbox_rejections_total{reason="outside_roots"} 1`)
}

func TestGzipCompression(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/services", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestStreamOverServe(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/stream"
	header := http.Header{"Accept-Encoding": []string{"gzip"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":       "invoke",
		"request_id": "1",
		"tool_id":    "terminal.list_sessions",
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "result", frame["type"])
	assert.Equal(t, true, frame["result"].(map[string]interface{})["success"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
