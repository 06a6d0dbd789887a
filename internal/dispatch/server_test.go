package dispatch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axd/internal/config"
	"axd/internal/element"
	"axd/internal/health"
	"axd/internal/logging"
	"axd/internal/platform"
	"axd/internal/platform/fake"
)

func newTestServer(t *testing.T, f *fake.Adapters) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	logger, err := logging.New(cfg)
	require.NoError(t, err)
	srv, err := New(cfg, logger, f.Build(), health.NewChecker())
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// Seed scenario: click an element resolved by title (spec.md §8).
func TestClickElementByTitle(t *testing.T) {
	f := fake.New()
	f.SetTree(1234, &fake.Node{Role: "AXWindow", Children: []*fake.Node{
		{Role: "AXButton", Title: "OK", Frame: frame(100, 200, 80, 40), Actions: []string{"press"}},
	}})
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/click/element", map[string]any{"title": "OK", "pid": 1234})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, true, resp["success"])
	el := resp["element"].(map[string]any)
	assert.Equal(t, "AXButton", el["role"])
	clicked := resp["clicked_at"].(map[string]any)
	assert.Equal(t, 140.0, clicked["x"])
	assert.Equal(t, 220.0, clicked["y"])

	require.Len(t, f.Calls, 1)
	assert.Equal(t, "click", f.Calls[0].Kind)
	assert.Equal(t, 140.0, f.Calls[0].X)
	assert.Equal(t, 220.0, f.Calls[0].Y)
}

// Seed scenario: a title/role-targeted /type falls back to setValue (background mode).
func TestTypeViaSetValue(t *testing.T) {
	f := fake.New()
	f.SetTree(1234, &fake.Node{Role: "AXWindow", Children: []*fake.Node{
		{Role: "AXTextField", Title: "Email Address"},
	}})
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/type", map[string]any{
		"text": "a@b", "pid": 1234, "role": "AXTextField", "title_contains": "Email",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3.0, resp["characters_typed"])

	var setValues, synthesized int
	for _, c := range f.Calls {
		switch c.Kind {
		case "setValue":
			setValues++
			assert.Equal(t, "a@b", c.Value)
		case "type", "key":
			synthesized++
		}
	}
	assert.Equal(t, 1, setValues)
	assert.Equal(t, 0, synthesized, "no keystrokes should be synthesized in setValue mode")
}

// Seed scenario: /wait resolves as soon as a node disappears.
func TestWaitUntilDisappears(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow", Children: []*fake.Node{
		{Role: "AXStaticText", Title: "Loading"},
	}})
	srv := newTestServer(t, f)

	go func() {
		time.Sleep(350 * time.Millisecond)
		f.RemoveNode(1, []int{0})
	}()

	rec, resp := doJSON(t, srv, http.MethodPost, "/wait", map[string]any{
		"title": "Loading", "pid": 1, "condition": "not_exists",
		"timeout_ms": 2000, "poll_interval_ms": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["condition_met"])

	waitedMs := resp["waited_ms"].(float64)
	assert.GreaterOrEqual(t, waitedMs, 300.0)
	assert.LessOrEqual(t, waitedMs, 1000.0)
}

// Seed scenario: /wait times out and reports the bound in its error.
func TestWaitTimeout(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow"})
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/wait", map[string]any{
		"title": "NeverAppears", "pid": 1, "timeout_ms": 200, "poll_interval_ms": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["condition_met"])

	waitedMs := resp["waited_ms"].(float64)
	assert.GreaterOrEqual(t, waitedMs, 200.0)
	assert.LessOrEqual(t, waitedMs, 400.0)

	errMsg, _ := resp["error"].(string)
	assert.Contains(t, errMsg, "Timeout")
	assert.Contains(t, errMsg, "200ms")
}

// Seed scenario: /key with a path maps well-known keys to accessibility
// actions, and rejects arbitrary keys for a path target.
func TestKeyPathActionMapping(t *testing.T) {
	f := fake.New()
	f.SetTree(1234, &fake.Node{Role: "AXWindow", Children: []*fake.Node{{Role: "AXButton", Title: "OK"}}})
	srv := newTestServer(t, f)

	cases := []struct{ key, expect string }{
		{"return", "confirm"},
		{"escape", "cancel"},
		{"space", "press"},
	}
	for _, tc := range cases {
		f.Calls = nil
		rec, _ := doJSON(t, srv, http.MethodPost, "/key", map[string]any{
			"key": tc.key, "path": map[string]any{"pid": 1234, "path": []int{0}},
		})
		require.Equal(t, http.StatusOK, rec.Code, "key %q: %s", tc.key, rec.Body.String())
		require.Len(t, f.Calls, 1, "key %q", tc.key)
		assert.Equal(t, tc.expect, f.Calls[0].Kind, "key %q", tc.key)
	}

	rec, resp := doJSON(t, srv, http.MethodPost, "/key", map[string]any{
		"key": "a", "path": map[string]any{"pid": 1234, "path": []int{0}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["success"])
}

func TestClickNegativeCoordinateRejected(t *testing.T) {
	f := fake.New()
	srv := newTestServer(t, f)

	rec, _ := doJSON(t, srv, http.MethodPost, "/click", map[string]any{"x": -5.0, "y": 10.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.Calls, "no click should be synthesized for a rejected request")
}

func TestTypeEmptyTextRejected(t *testing.T) {
	f := fake.New()
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/type", map[string]any{"text": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, resp["error"], "empty")
}

func TestScrollZeroDeltaRejected(t *testing.T) {
	f := fake.New()
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/scroll", map[string]any{"x": 10.0, "y": 10.0, "delta_x": 0, "delta_y": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, resp["error"], "non-zero")
}

func TestWaitTimeoutMsOutOfRangeRejected(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow"})
	srv := newTestServer(t, f)

	rec, _ := doJSON(t, srv, http.MethodPost, "/wait", map[string]any{"title": "x", "pid": 1, "timeout_ms": 70000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTypeUnknownModeRejected(t *testing.T) {
	f := fake.New()
	srv := newTestServer(t, f)

	rec, resp := doJSON(t, srv, http.MethodPost, "/type", map[string]any{"text": "hi", "mode": "overwrite"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errMsg, _ := resp["error"].(string)
	assert.Contains(t, errMsg, "replace")
	assert.Contains(t, errMsg, "keys")
}

func TestAccessibilityElementsRequiresCriteria(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow"})
	srv := newTestServer(t, f)
	f.SetFrontmost(platform.ProcessInfo{PID: 1, Name: "Target"})

	req := httptest.NewRequest(http.MethodGet, "/accessibility/elements", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "criteria")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, fake.New())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestMetricsEndpointReflectsRequestsServed(t *testing.T) {
	srv := newTestServer(t, fake.New())

	rec, _ := doJSON(t, srv, http.MethodPost, "/click", map[string]any{"x": -5.0, "y": 10.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "axd_http_requests_total")
	assert.Contains(t, body, "axd_http_errors_total")
	// the rejected /click above should show up as both a served request and an error
	assert.Contains(t, body, "axd_http_errors_total 1")
}

func TestStatusEndpointIncludesMetricsSnapshot(t *testing.T) {
	srv := newTestServer(t, fake.New())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	metricsSnap, ok := resp["metrics"].(map[string]any)
	require.True(t, ok, "/status should embed a metrics snapshot, got %#v", resp["metrics"])
	assert.Contains(t, metricsSnap, "axd_http_requests_total")
}

func frame(x, y, w, h float64) element.Frame { return element.Frame{X: x, Y: y, Width: w, Height: h} }
