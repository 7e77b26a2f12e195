package usage

import (
	"sync"

	"github.com/phuslu/log"
)

// Aggregator is the thread-safe accumulation point for Counters. One
// Aggregator is shared by all goroutines collaborating on a logical operation:
// each goroutine measures its own work with a private Counter and merges the
// finished measurements in. Reads reflect some prefix of completed merges in
// lock-acquisition order.
//
// The internal sink counter is never started, paused, or halted; it exists
// purely as a destination for merges.
type Aggregator struct {
	src Source

	mu   sync.RWMutex
	sink *Counter
}

// NewAggregator returns an empty aggregator whose sessions and sink read from
// src.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{
		src:  src,
		sink: NewCounter(src),
	}
}

// StartSession returns a brand-new, already-started Counter. The counter is
// not associated with the aggregator in any way; the caller halts it and
// merges it in:
//
//	c := agg.StartSession()
//	doWork()
//	agg.Merge(c.Halt())
func (a *Aggregator) StartSession() *Counter {
	return NewCounter(a.src).Start()
}

// ScopedSession returns an already-started Counter wired to merge itself into
// the aggregator when it is halted, exactly once, on whichever exit path halts
// it. The optional extra hook runs after the merge. The wiring uses the
// counter's halt hook, so replacing that hook disables the automatic merge.
//
//	c := agg.ScopedSession(nil)
//	defer c.Halt()
//	doWork()
func (a *Aggregator) ScopedSession(extra Hook) *Counter {
	c := NewCounter(a.src).OnHalt(func(t *Counter) {
		a.Merge(t)
		if extra != nil {
			extra(t)
		}
	})
	return c.Start()
}

// Merge folds the cumulative totals of c into the aggregator. The counter must
// not be running, or the tally is inaccurate. A nil counter is logged and
// ignored; a merge failure never reaches the caller's timed work.
func (a *Aggregator) Merge(c *Counter) {
	if c == nil {
		log.Error().Msg("usage: merge of nil counter ignored")
		return
	}
	if c.Running() {
		log.Warn().Msg("usage: merging a running counter yields an inaccurate tally")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink.Add(c)
}

// MergeLast folds only the most recently completed segment of c into the
// aggregator. Pair it with Counter.Split to publish partial progress without
// double-merging earlier segments.
func (a *Aggregator) MergeLast(c *Counter) {
	if c == nil {
		log.Error().Msg("usage: merge of nil counter ignored")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink.AddLast(c)
}

// CPUTimeNanos returns the merged total CPU nanoseconds, or Disabled when CPU
// time tracking is off.
func (a *Aggregator) CPUTimeNanos() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink.CPUTimeNanos()
}

// UserTimeNanos returns the merged total user-mode CPU nanoseconds, or
// Disabled.
func (a *Aggregator) UserTimeNanos() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink.UserTimeNanos()
}

// ActiveTimeMillis returns the merged total active time in milliseconds.
func (a *Aggregator) ActiveTimeMillis() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink.ActiveTimeMillis()
}

// AllocatedBytes returns the merged total allocated bytes, or Disabled.
func (a *Aggregator) AllocatedBytes() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink.AllocatedBytes()
}

// String renders the merged totals in the summary format of Counter.String.
func (a *Aggregator) String() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink.String()
}
