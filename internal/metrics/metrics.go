// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Lookup metrics
	IncLookupSuccess()
	IncLookupNotFound()
	IncLookupUpstreamError()
	ObserveLookupDuration(duration time.Duration)

	// Artifact export metrics
	IncBundleExported()
	IncImageDownloadFailed()

	// Auth metrics
	IncLoginSuccess()
	IncLoginFailure()
}
