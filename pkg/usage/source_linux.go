//go:build linux

package usage

import (
	"time"

	"golang.org/x/sys/unix"
)

// threadSource reads per-thread CPU time via getrusage(RUSAGE_THREAD).
//
// The readings are for whichever OS thread makes the call, so a goroutine
// using this source must pin itself with runtime.LockOSThread for the lifetime
// of its counters. The Go runtime exposes no per-thread allocation counter, so
// allocation tracking is reported as unsupported.
type threadSource struct {
	cpuEnabled bool
}

// NewSystemSource returns the best per-unit Source this platform offers. On
// Linux that is per-thread CPU time; callers must lock their goroutine to its
// OS thread while measuring.
func NewSystemSource() Source {
	return &threadSource{cpuEnabled: Enable() == nil}
}

func (s *threadSource) Now() time.Time { return time.Now() }

func (s *threadSource) CPUTime() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, err
	}
	total, _ := rusageCPUNanos(&ru)
	return total, nil
}

func (s *threadSource) UserCPUTime() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0, err
	}
	_, user := rusageCPUNanos(&ru)
	return user, nil
}

func (s *threadSource) AllocatedBytes() (int64, error) {
	return 0, nil // never called: AllocationEnabled is false
}

func (s *threadSource) CPUTimeEnabled() bool { return s.cpuEnabled }

func (s *threadSource) AllocationEnabled() bool { return false }
