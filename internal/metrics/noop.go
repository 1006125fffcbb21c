package metrics

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) IncUserCreated()          {}
func (NoopRecorder) IncUserUpdated()          {}
func (NoopRecorder) IncUserDeleted()          {}
func (NoopRecorder) IncImageCreated()         {}
func (NoopRecorder) IncImageUpdated()         {}
func (NoopRecorder) IncImageDeleted()         {}
func (NoopRecorder) IncEventProcessed(string) {}
func (NoopRecorder) IncEventSkipped(string)   {}
