//go:build linux || darwin || freebsd

package usage

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// enableProbe checks that rusage readings work at all on this system.
func enableProbe() error {
	var ru unix.Rusage
	return unix.Getrusage(unix.RUSAGE_SELF, &ru)
}

func rusageCPUNanos(ru *unix.Rusage) (total, user int64) {
	user = int64(ru.Utime.Sec)*int64(time.Second) + int64(ru.Utime.Usec)*int64(time.Microsecond)
	sys := int64(ru.Stime.Sec)*int64(time.Second) + int64(ru.Stime.Usec)*int64(time.Microsecond)
	return user + sys, user
}

// processSource reads process-wide usage: CPU time from getrusage(RUSAGE_SELF)
// and allocated bytes from the Go runtime's cumulative heap allocation total.
//
// Process-wide readings attribute everything the process does to the calling
// counter, so they are only accurate when a single worker is measuring at a
// time. The per-thread system source is preferred where the platform has one.
type processSource struct {
	cpuEnabled bool
}

// NewProcessSource returns a Source measuring the whole process.
func NewProcessSource() Source {
	return &processSource{cpuEnabled: Enable() == nil}
}

func (s *processSource) Now() time.Time { return time.Now() }

func (s *processSource) CPUTime() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	total, _ := rusageCPUNanos(&ru)
	return total, nil
}

func (s *processSource) UserCPUTime() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	_, user := rusageCPUNanos(&ru)
	return user, nil
}

func (s *processSource) AllocatedBytes() (int64, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.TotalAlloc), nil
}

func (s *processSource) CPUTimeEnabled() bool { return s.cpuEnabled }

func (s *processSource) AllocationEnabled() bool { return true }
