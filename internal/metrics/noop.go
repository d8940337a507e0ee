package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLookupSuccess is a no-op.
func (n *NoopRecorder) IncLookupSuccess() {}

// IncLookupNotFound is a no-op.
func (n *NoopRecorder) IncLookupNotFound() {}

// IncLookupUpstreamError is a no-op.
func (n *NoopRecorder) IncLookupUpstreamError() {}

// ObserveLookupDuration is a no-op.
func (n *NoopRecorder) ObserveLookupDuration(duration time.Duration) {}

// IncBundleExported is a no-op.
func (n *NoopRecorder) IncBundleExported() {}

// IncImageDownloadFailed is a no-op.
func (n *NoopRecorder) IncImageDownloadFailed() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}
