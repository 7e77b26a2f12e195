//go:build darwin || freebsd

package usage

// NewSystemSource returns the best per-unit Source this platform offers.
// Without RUSAGE_THREAD that is the process-wide source.
func NewSystemSource() Source {
	return NewProcessSource()
}
