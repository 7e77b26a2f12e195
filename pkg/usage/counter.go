package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// Disabled is the sentinel returned by numeric getters for a capability the
// Source reported as unsupported at construction time.
const Disabled int64 = -1

// Hook is a callback invoked synchronously, on the owning goroutine, after the
// corresponding state transition has already taken effect.
type Hook func(*Counter)

// Counter tracks active time, CPU usage, and memory allocation for a single
// unit of work.
//
// Starting the counter checkpoints all readings from its Source at that
// moment. Pausing or halting updates the totals by comparing current readings
// to the checkpoint. "Splitting" updates the totals but keeps the counter
// running; it is functionally a pause immediately followed by a start.
//
// # Ownership
//
// A Counter is exclusively owned by one goroutine: exactly one goroutine may
// call its mutating methods for the counter's entire lifetime. This is a
// precondition, not runtime-enforced. Share an Aggregator instead when several
// goroutines collaborate on one operation.
//
// A halted counter is permanently closed: Start, Pause, and Halt become no-ops.
type Counter struct {
	src Source

	created time.Time

	// Cumulative totals across all completed segments. Only grow.
	cpuNanos   int64
	usrNanos   int64
	activeMs   int64
	allocBytes int64

	// Deltas from the most recently completed segment only.
	lastCPUNanos   int64
	lastUsrNanos   int64
	lastActiveMs   int64
	lastAllocBytes int64

	// Checkpoint captured at the start of the current segment.
	baseCPU    int64
	baseUsr    int64
	baseAlloc  int64
	baseActive time.Time

	running bool
	halted  time.Time // zero while live; set once, permanently
	pauses  int

	// Capability flags, fixed at construction.
	cpuEnabled   bool
	allocEnabled bool

	onStart Hook
	onPause Hook
	onHalt  Hook
}

// NewCounter returns a counter reading from src. Capability flags are queried
// here, once, and never re-evaluated.
func NewCounter(src Source) *Counter {
	return &Counter{
		src:          src,
		created:      src.Now(),
		cpuEnabled:   src.CPUTimeEnabled(),
		allocEnabled: src.AllocationEnabled(),
	}
}

// Start opens a measurement segment: it checkpoints the current readings for
// every enabled capability and marks the counter running. A reading that fails
// is logged and left at its zero checkpoint; the session continues.
//
// Starting an already-halted counter is a logged no-op.
func (c *Counter) Start() *Counter {
	if c.isHalted() {
		log.Warn().Msg("usage: start on a halted counter ignored")
		return c
	}

	c.baseCPU, c.baseUsr, c.baseAlloc = 0, 0, 0
	c.baseActive = c.src.Now()
	c.running = true

	if c.cpuEnabled {
		if v, err := c.src.CPUTime(); err != nil {
			log.Error().Err(err).Msg("usage: reading cpu time at start")
		} else {
			c.baseCPU = v
		}
		if v, err := c.src.UserCPUTime(); err != nil {
			log.Error().Err(err).Msg("usage: reading user cpu time at start")
		} else {
			c.baseUsr = v
		}
	}

	if c.allocEnabled {
		if v, err := c.src.AllocatedBytes(); err != nil {
			log.Error().Err(err).Msg("usage: reading allocated bytes at start")
		} else {
			c.baseAlloc = v
		}
	}

	if c.onStart != nil {
		c.onStart(c)
	}
	return c
}

// Pause closes the current segment: the deltas since the last Start become the
// last-segment values and are added to the cumulative totals. Pausing a
// counter that is not running, or that has halted, is a no-op, so repeated
// pauses never double-count.
func (c *Counter) Pause() *Counter {
	if !c.accumulate() {
		return c
	}
	c.pauses++
	if c.onPause != nil {
		c.onPause(c)
	}
	return c
}

// Split closes the current segment and immediately opens a new one, keeping
// the counter running. The closed segment is available via the Last getters
// and LastString, so partial progress can be published (see
// Aggregator.MergeLast) before the whole session finishes.
func (c *Counter) Split() *Counter {
	c.Pause()
	c.Start()
	return c
}

// Halt closes the current segment like Pause, but does not count as a pause
// and does not invoke the pause hook; it then permanently closes the counter
// and invokes the halt hook. A halted counter cannot be started again;
// repeated halts are no-ops.
func (c *Counter) Halt() *Counter {
	if c.isHalted() {
		return c
	}
	c.accumulate()
	c.halted = c.src.Now()
	if c.onHalt != nil {
		c.onHalt(c)
	}
	return c
}

// accumulate folds the open segment into the totals. It reports whether there
// was an open segment to close.
func (c *Counter) accumulate() bool {
	if !c.running || c.isHalted() {
		return false
	}
	c.running = false

	if c.cpuEnabled {
		if v, err := c.src.CPUTime(); err != nil {
			log.Error().Err(err).Msg("usage: reading cpu time at pause")
			c.lastCPUNanos = 0
		} else {
			c.lastCPUNanos = v - c.baseCPU
			c.cpuNanos += c.lastCPUNanos
		}
		if v, err := c.src.UserCPUTime(); err != nil {
			log.Error().Err(err).Msg("usage: reading user cpu time at pause")
			c.lastUsrNanos = 0
		} else {
			c.lastUsrNanos = v - c.baseUsr
			c.usrNanos += c.lastUsrNanos
		}
	}

	c.lastActiveMs = c.src.Now().Sub(c.baseActive).Milliseconds()
	c.activeMs += c.lastActiveMs

	if c.allocEnabled {
		if v, err := c.src.AllocatedBytes(); err != nil {
			log.Error().Err(err).Msg("usage: reading allocated bytes at pause")
			c.lastAllocBytes = 0
		} else {
			c.lastAllocBytes = v - c.baseAlloc
			c.allocBytes += c.lastAllocBytes
		}
	}

	return true
}

// Add merges the cumulative totals of other into this counter. The other
// counter must not be running, or the merge is inaccurate; this is a caller
// precondition and is not detected at runtime.
func (c *Counter) Add(other *Counter) {
	c.cpuNanos += other.cpuNanos
	c.usrNanos += other.usrNanos
	c.activeMs += other.activeMs
	c.allocBytes += other.allocBytes
}

// AddLast merges only the most recently completed segment of other into this
// counter's cumulative totals. Use it to fold a single segment published by
// Split without re-merging the segments before it. The other counter must not
// be running.
func (c *Counter) AddLast(other *Counter) {
	c.cpuNanos += other.lastCPUNanos
	c.usrNanos += other.lastUsrNanos
	c.activeMs += other.lastActiveMs
	c.allocBytes += other.lastAllocBytes
}

func (c *Counter) isHalted() bool { return !c.halted.IsZero() }

// Running reports whether a segment is currently open.
func (c *Counter) Running() bool { return c.running }

// Halted reports whether the counter has been permanently closed.
func (c *Counter) Halted() bool { return c.isHalted() }

// Pauses returns the number of completed (non-halt) pauses.
func (c *Counter) Pauses() int { return c.pauses }

// LifetimeMillis is the wall-clock age of the counter: from construction to
// its halt, or to now while it is still live.
func (c *Counter) LifetimeMillis() int64 {
	end := c.halted
	if end.IsZero() {
		end = c.src.Now()
	}
	return end.Sub(c.created).Milliseconds()
}

// CPUTimeNanos returns total CPU nanoseconds across all completed segments,
// or Disabled when CPU time tracking is off.
func (c *Counter) CPUTimeNanos() int64 {
	if !c.cpuEnabled {
		return Disabled
	}
	return c.cpuNanos
}

// UserTimeNanos returns total user-mode CPU nanoseconds, or Disabled.
func (c *Counter) UserTimeNanos() int64 {
	if !c.cpuEnabled {
		return Disabled
	}
	return c.usrNanos
}

// ActiveTimeMillis returns the total time the counter has been actively
// running, in milliseconds.
func (c *Counter) ActiveTimeMillis() int64 { return c.activeMs }

// AllocatedBytes returns total bytes allocated across all completed segments,
// or Disabled when allocation tracking is off.
func (c *Counter) AllocatedBytes() int64 {
	if !c.allocEnabled {
		return Disabled
	}
	return c.allocBytes
}

// LastCPUTimeNanos is like CPUTimeNanos but for the most recently completed
// segment only.
func (c *Counter) LastCPUTimeNanos() int64 {
	if !c.cpuEnabled {
		return Disabled
	}
	return c.lastCPUNanos
}

// LastUserTimeNanos is like UserTimeNanos but for the last segment only.
func (c *Counter) LastUserTimeNanos() int64 {
	if !c.cpuEnabled {
		return Disabled
	}
	return c.lastUsrNanos
}

// LastActiveTimeMillis is like ActiveTimeMillis but for the last segment only.
func (c *Counter) LastActiveTimeMillis() int64 { return c.lastActiveMs }

// LastAllocatedBytes is like AllocatedBytes but for the last segment only.
func (c *Counter) LastAllocatedBytes() int64 {
	if !c.allocEnabled {
		return Disabled
	}
	return c.lastAllocBytes
}

// OnStart sets the hook invoked after every Start (including the start half of
// a Split). It returns the counter for chaining.
func (c *Counter) OnStart(h Hook) *Counter {
	c.onStart = h
	return c
}

// OnPause sets the hook invoked after every counted Pause. Since a split is a
// pause plus a start, it also runs on Split. Halt does not invoke it.
func (c *Counter) OnPause(h Hook) *Counter {
	c.onPause = h
	return c
}

// OnHalt sets the hook invoked after Halt. Aggregator.ScopedSession relies on
// this hook for its exactly-once merge; replacing it on a scoped counter
// disables the automatic merge.
func (c *Counter) OnHalt(h Hook) *Counter {
	c.onHalt = h
	return c
}

// String renders the cumulative totals in the fixed summary format:
//
//	Lifetime: 12 ms; Active: 10 ms; CPU: 9.876 ms; MemAlloc: 123.45 kB
//
// A capability that is off renders as the literal DISABLED.
func (c *Counter) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lifetime: %d ms; ", c.LifetimeMillis())
	fmt.Fprintf(&b, "Active: %d ms; ", c.activeMs)

	b.WriteString("CPU: ")
	if c.cpuEnabled {
		fmt.Fprintf(&b, "%.3f ms; ", float64(c.cpuNanos)/1e6)
	} else {
		b.WriteString("DISABLED; ")
	}

	b.WriteString("MemAlloc: ")
	if c.allocEnabled {
		fmt.Fprintf(&b, "%.2f kB", float64(c.allocBytes)/1024.0)
	} else {
		b.WriteString("DISABLED")
	}

	return b.String()
}

// LastString is like String but for the most recently completed segment,
// with each field prefixed "l-". Lifetime is omitted: it is a property of the
// whole counter, not of one segment.
func (c *Counter) LastString() string {
	var b strings.Builder

	fmt.Fprintf(&b, "l-Active: %d ms; ", c.lastActiveMs)

	b.WriteString("l-CPU: ")
	if c.cpuEnabled {
		fmt.Fprintf(&b, "%.3f ms; ", float64(c.lastCPUNanos)/1e6)
	} else {
		b.WriteString("DISABLED; ")
	}

	b.WriteString("l-MemAlloc: ")
	if c.allocEnabled {
		fmt.Fprintf(&b, "%.2f kB", float64(c.lastAllocBytes)/1024.0)
	} else {
		b.WriteString("DISABLED")
	}

	return b.String()
}
