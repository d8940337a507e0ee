package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LookupSuccesses       uint64
	LookupNotFound        uint64
	LookupUpstreamErrors  uint64
	LookupDurationCount   uint64
	LookupDurationTotalNs int64
	BundlesExported       uint64
	ImageDownloadFailures uint64
	LoginSuccesses        uint64
	LoginFailures         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	lookupSuccesses       uint64
	lookupNotFound        uint64
	lookupUpstreamErrors  uint64
	lookupDurationCount   uint64
	lookupDurationTotalNs int64
	bundlesExported       uint64
	imageDownloadFailures uint64
	loginSuccesses        uint64
	loginFailures         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LookupSuccesses:       atomic.LoadUint64(&m.lookupSuccesses),
		LookupNotFound:        atomic.LoadUint64(&m.lookupNotFound),
		LookupUpstreamErrors:  atomic.LoadUint64(&m.lookupUpstreamErrors),
		LookupDurationCount:   atomic.LoadUint64(&m.lookupDurationCount),
		LookupDurationTotalNs: atomic.LoadInt64(&m.lookupDurationTotalNs),
		BundlesExported:       atomic.LoadUint64(&m.bundlesExported),
		ImageDownloadFailures: atomic.LoadUint64(&m.imageDownloadFailures),
		LoginSuccesses:        atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:         atomic.LoadUint64(&m.loginFailures),
	}
}

// IncLookupSuccess increments the successful lookup counter.
func (m *InMemoryRecorder) IncLookupSuccess() {
	atomic.AddUint64(&m.lookupSuccesses, 1)
}

// IncLookupNotFound increments the not-found lookup counter.
func (m *InMemoryRecorder) IncLookupNotFound() {
	atomic.AddUint64(&m.lookupNotFound, 1)
}

// IncLookupUpstreamError increments the upstream error counter.
func (m *InMemoryRecorder) IncLookupUpstreamError() {
	atomic.AddUint64(&m.lookupUpstreamErrors, 1)
}

// ObserveLookupDuration records a lookup round-trip duration.
func (m *InMemoryRecorder) ObserveLookupDuration(duration time.Duration) {
	atomic.AddUint64(&m.lookupDurationCount, 1)
	atomic.AddInt64(&m.lookupDurationTotalNs, duration.Nanoseconds())
}

// IncBundleExported increments the exported bundle counter.
func (m *InMemoryRecorder) IncBundleExported() {
	atomic.AddUint64(&m.bundlesExported, 1)
}

// IncImageDownloadFailed increments the image download failure counter.
func (m *InMemoryRecorder) IncImageDownloadFailed() {
	atomic.AddUint64(&m.imageDownloadFailures, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}
