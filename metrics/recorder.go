// Package metrics exposes observability hooks for link resolution. The
// resolver records through the Recorder interface; NoopRecorder is the
// default and PrometheusRecorder backs the HTTP server's /metrics endpoint.
package metrics

import "time"

// Outcome labels for resolution counters.
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
)

// Recorder defines observability hooks for resolution batches.
type Recorder interface {
	ObserveFetchDuration(d time.Duration, status string)
	IncResolution(outcome string, kind string)
	IncDOILookup(success bool)
	ObserveBatchDuration(d time.Duration, links int)
	SetPoolConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(time.Duration, string) {}
func (NoopRecorder) IncResolution(string, string)              {}
func (NoopRecorder) IncDOILookup(bool)                         {}
func (NoopRecorder) ObserveBatchDuration(time.Duration, int)   {}
func (NoopRecorder) SetPoolConcurrency(int)                    {}
