package usage

import (
	"sync"
	"time"
)

// Source is the measurement facility a Counter reads from. All readings are
// cumulative since an arbitrary reference point; counters only ever look at
// differences between readings.
//
// The capability methods are queried once, when a Counter is constructed, and
// treated as fixed for the counter's lifetime. A capability that is off is not
// an error: the counter renders the DISABLED sentinel for it instead.
type Source interface {
	// Now returns the wall clock. It is part of the interface so that a fake
	// source controls every reading a counter makes, including elapsed time.
	Now() time.Time

	// CPUTime returns cumulative CPU nanoseconds for the calling unit.
	CPUTime() (int64, error)

	// UserCPUTime returns the user-mode portion of CPUTime.
	UserCPUTime() (int64, error)

	// AllocatedBytes returns cumulative allocated bytes for the calling unit.
	AllocatedBytes() (int64, error)

	// CPUTimeEnabled reports whether CPU time tracking is supported and on.
	CPUTimeEnabled() bool

	// AllocationEnabled reports whether allocation tracking is supported and on.
	AllocationEnabled() bool
}

var (
	enableOnce sync.Once
	enableErr  error
)

// Enable performs the process-wide, one-time, best-effort check that the
// platform measurement facilities are usable. It is safe to call from multiple
// goroutines; only the first call probes. A non-nil result means counters will
// run with some capabilities disabled — callers should log it, never fail on it.
func Enable() error {
	enableOnce.Do(func() {
		enableErr = enableProbe()
	})
	return enableErr
}
