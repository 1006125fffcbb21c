package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogger_CapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	rec := httptest.NewRecorder()
	Logger(logger)(next).ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, `"status_code":418`) {
		t.Errorf("expected status code in log, got %s", out)
	}
	if !strings.Contains(out, `"path":"/brew"`) {
		t.Errorf("expected path in log, got %s", out)
	}
}

func TestLogger_ErrorLevelForServerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Logger(logger)(next).ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("expected error level for 500, got %s", buf.String())
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := wrapResponseWriter(rec)

	if _, err := wrapped.Write([]byte("ok")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if wrapped.status != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", wrapped.status)
	}
}
