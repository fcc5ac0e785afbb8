package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// captureLogs routes slog to a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// logLines decodes each JSON log line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

// TestTimingMiddleware_LogsRequest verifies a fast request is logged at DEBUG with its status.
func TestTimingMiddleware_LogsRequest(t *testing.T) {
	buf := captureLogs(t)
	handler := Timing(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	lines := logLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	if lines[0]["msg"] != "request" || lines[0]["level"] != "DEBUG" {
		t.Errorf("log = %v", lines[0])
	}
	if lines[0]["path"] != "/missing" || lines[0]["status"] != float64(404) {
		t.Errorf("log fields = %v", lines[0])
	}
}

// TestTimingMiddleware_SlowRequestWarns verifies requests over the threshold log at WARN.
func TestTimingMiddleware_SlowRequestWarns(t *testing.T) {
	buf := captureLogs(t)
	handler := Timing(time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/session", nil))

	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0]["msg"] != "slow_request" || lines[0]["level"] != "WARN" {
		t.Fatalf("log = %v", lines)
	}
	if d, _ := lines[0]["duration_ms"].(float64); d < 5 {
		t.Errorf("duration_ms = %v, want >= 5", d)
	}
}

// TestTimingMiddleware_SkipsStatic verifies static assets are excluded from timing.
func TestTimingMiddleware_SkipsStatic(t *testing.T) {
	buf := captureLogs(t)
	handler := Timing(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/static/site.css", nil))

	if buf.Len() != 0 {
		t.Errorf("static request was logged: %s", buf.String())
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_DefaultStatusWhenNotSet verifies 200 is logged when the handler only writes a body.
func TestTimingMiddleware_DefaultStatusWhenNotSet(t *testing.T) {
	buf := captureLogs(t)
	handler := Timing(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0]["status"] != float64(200) {
		t.Fatalf("log = %v", lines)
	}
}

// TestTimingMiddleware_PoolNoStateLeak verifies a pooled writer does not carry a status between requests.
func TestTimingMiddleware_PoolNoStateLeak(t *testing.T) {
	buf := captureLogs(t)
	first := Timing(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	second := Timing(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/a", nil))
	second.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/b", nil))

	lines := logLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	if lines[1]["status"] != float64(200) {
		t.Errorf("second request status = %v, want 200", lines[1]["status"])
	}
}
