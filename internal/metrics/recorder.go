package metrics

import "time"

// RunRecorder observes completed check passes.
type RunRecorder interface {
	ObserveRun(finished time.Time, duration time.Duration, endpoints int)
}

type NoopRunRecorder struct{}

func (NoopRunRecorder) ObserveRun(finished time.Time, duration time.Duration, endpoints int) {}
