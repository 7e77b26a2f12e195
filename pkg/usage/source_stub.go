//go:build !linux && !darwin && !freebsd

package usage

import (
	"errors"
	"time"
)

func enableProbe() error {
	return errors.New("usage: no measurement facilities on this platform")
}

// disabledSource reports every capability as off. Counters built on it still
// track active time, which needs only the wall clock.
type disabledSource struct{}

// NewSystemSource returns a Source with all capabilities disabled; only
// active-time tracking works on this platform.
func NewSystemSource() Source { return disabledSource{} }

// NewProcessSource is NewSystemSource on platforms without rusage.
func NewProcessSource() Source { return disabledSource{} }

func (disabledSource) Now() time.Time { return time.Now() }

func (disabledSource) CPUTime() (int64, error) { return 0, nil }

func (disabledSource) UserCPUTime() (int64, error) { return 0, nil }

func (disabledSource) AllocatedBytes() (int64, error) { return 0, nil }

func (disabledSource) CPUTimeEnabled() bool { return false }

func (disabledSource) AllocationEnabled() bool { return false }
