package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pixmint/pixmint/internal/metrics"
)

func TestMetricsHandler_Metrics(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncUserCreated()
	recorder.IncUserCreated()
	recorder.IncEventProcessed("created")
	recorder.IncEventSkipped("unknown_kind")

	h := NewMetricsHandler(recorder)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"pixmint_users_created_total 2",
		`pixmint_events_processed_total{kind="created"} 1`,
		`pixmint_events_skipped_total{reason="unknown_kind"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition, got:\n%s", want, body)
		}
	}
}
