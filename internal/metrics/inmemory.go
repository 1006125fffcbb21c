package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated    uint64
	UsersUpdated    uint64
	UsersDeleted    uint64
	ImagesCreated   uint64
	ImagesUpdated   uint64
	ImagesDeleted   uint64
	EventsProcessed map[string]uint64
	EventsSkipped   map[string]uint64
}

// InMemoryRecorder stores counters in memory. Suitable for the metrics
// endpoint of a single process and for tests.
type InMemoryRecorder struct {
	usersCreated  uint64
	usersUpdated  uint64
	usersDeleted  uint64
	imagesCreated uint64
	imagesUpdated uint64
	imagesDeleted uint64

	mu              sync.Mutex
	eventsProcessed map[string]uint64
	eventsSkipped   map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		eventsProcessed: make(map[string]uint64),
		eventsSkipped:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	processed := make(map[string]uint64, len(m.eventsProcessed))
	for k, v := range m.eventsProcessed {
		processed[k] = v
	}
	skipped := make(map[string]uint64, len(m.eventsSkipped))
	for k, v := range m.eventsSkipped {
		skipped[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UsersCreated:    atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:    atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:    atomic.LoadUint64(&m.usersDeleted),
		ImagesCreated:   atomic.LoadUint64(&m.imagesCreated),
		ImagesUpdated:   atomic.LoadUint64(&m.imagesUpdated),
		ImagesDeleted:   atomic.LoadUint64(&m.imagesDeleted),
		EventsProcessed: processed,
		EventsSkipped:   skipped,
	}
}

func (m *InMemoryRecorder) IncUserCreated()  { atomic.AddUint64(&m.usersCreated, 1) }
func (m *InMemoryRecorder) IncUserUpdated()  { atomic.AddUint64(&m.usersUpdated, 1) }
func (m *InMemoryRecorder) IncUserDeleted()  { atomic.AddUint64(&m.usersDeleted, 1) }
func (m *InMemoryRecorder) IncImageCreated() { atomic.AddUint64(&m.imagesCreated, 1) }
func (m *InMemoryRecorder) IncImageUpdated() { atomic.AddUint64(&m.imagesUpdated, 1) }
func (m *InMemoryRecorder) IncImageDeleted() { atomic.AddUint64(&m.imagesDeleted, 1) }

// IncEventProcessed increments the processed counter for an event kind.
func (m *InMemoryRecorder) IncEventProcessed(kind string) {
	m.mu.Lock()
	m.eventsProcessed[kind]++
	m.mu.Unlock()
}

// IncEventSkipped increments the skipped counter for a reason.
func (m *InMemoryRecorder) IncEventSkipped(reason string) {
	m.mu.Lock()
	m.eventsSkipped[reason]++
	m.mu.Unlock()
}
