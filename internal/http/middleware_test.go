package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLogger_AttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) != nil {
			sawLogger = true
		}
		w.WriteHeader(http.StatusNoContent)
	})

	handler := RequestLogger(base)(inner)
	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !sawLogger {
		t.Error("handler did not receive a context logger")
	}

	decoder := json.NewDecoder(&buf)
	var lines []map[string]any
	for decoder.More() {
		var line map[string]any
		if err := decoder.Decode(&line); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want started and completed", len(lines))
	}
	if lines[0]["msg"] != "request started" || lines[1]["msg"] != "request completed" {
		t.Errorf("log messages = %v / %v", lines[0]["msg"], lines[1]["msg"])
	}
	if lines[0]["path"] != "/groups" {
		t.Errorf("log path = %v, want /groups", lines[0]["path"])
	}
}

func TestRequestLogger_IncrementsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/groups", nil))
	}

	decoder := json.NewDecoder(&buf)
	ids := make(map[float64]bool)
	for decoder.More() {
		var line map[string]any
		if err := decoder.Decode(&line); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if id, ok := line["request_id"].(float64); ok {
			ids[id] = true
		}
	}
	if len(ids) != 2 {
		t.Errorf("distinct request ids = %d, want 2", len(ids))
	}
}
