// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User record metrics, counted on both write paths.
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Image record metrics.
	IncImageCreated()
	IncImageUpdated()
	IncImageDeleted()

	// Identity event metrics. kind is the wire event type;
	// IncEventSkipped covers unknown types and deduplicated redeliveries.
	IncEventProcessed(kind string)
	IncEventSkipped(reason string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
