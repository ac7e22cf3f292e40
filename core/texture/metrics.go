package texture

import "time"

// Upload modes reported to Metrics.
const (
	ModeAsync  = "async"
	ModeInline = "inline"
)

// Metrics observes manager activity. Implementations must be safe for concurrent use.
//
// A nil Metrics in Options disables observation.
type Metrics interface {
	ObserveUpload(mode string, duration time.Duration, bytes uint64, err error)
	SetPending(n int)
	ObserveDiscard(n int)
	ObserveDemotion(n int)
	SetMipSkipLevel(level int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveUpload(string, time.Duration, uint64, error) {}
func (nopMetrics) SetPending(int)                                     {}
func (nopMetrics) ObserveDiscard(int)                                 {}
func (nopMetrics) ObserveDemotion(int)                                {}
func (nopMetrics) SetMipSkipLevel(int)                                {}
