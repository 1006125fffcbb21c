package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/pixmint/pixmint/internal/metrics"
)

// MetricsHandler exposes process counters in Prometheus text format.
type MetricsHandler struct {
	source metrics.Snapshotter
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(source metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{source: source}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# TYPE pixmint_users_created_total counter\n")
	fmt.Fprintf(w, "pixmint_users_created_total %d\n", snap.UsersCreated)
	fmt.Fprintf(w, "# TYPE pixmint_users_updated_total counter\n")
	fmt.Fprintf(w, "pixmint_users_updated_total %d\n", snap.UsersUpdated)
	fmt.Fprintf(w, "# TYPE pixmint_users_deleted_total counter\n")
	fmt.Fprintf(w, "pixmint_users_deleted_total %d\n", snap.UsersDeleted)
	fmt.Fprintf(w, "# TYPE pixmint_images_created_total counter\n")
	fmt.Fprintf(w, "pixmint_images_created_total %d\n", snap.ImagesCreated)
	fmt.Fprintf(w, "# TYPE pixmint_images_updated_total counter\n")
	fmt.Fprintf(w, "pixmint_images_updated_total %d\n", snap.ImagesUpdated)
	fmt.Fprintf(w, "# TYPE pixmint_images_deleted_total counter\n")
	fmt.Fprintf(w, "pixmint_images_deleted_total %d\n", snap.ImagesDeleted)

	fmt.Fprintf(w, "# TYPE pixmint_events_processed_total counter\n")
	for _, kind := range sortedKeys(snap.EventsProcessed) {
		fmt.Fprintf(w, "pixmint_events_processed_total{kind=%q} %d\n", kind, snap.EventsProcessed[kind])
	}
	fmt.Fprintf(w, "# TYPE pixmint_events_skipped_total counter\n")
	for _, reason := range sortedKeys(snap.EventsSkipped) {
		fmt.Fprintf(w, "pixmint_events_skipped_total{reason=%q} %d\n", reason, snap.EventsSkipped[reason])
	}
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
