// Package usage provides per-worker resource-usage accounting and its
// concurrent aggregation counterpart.
//
// A Counter measures elapsed (active) time, CPU time, and allocated bytes
// attributable to one unit of work. It is driven through start/pause/split/halt
// by exactly one goroutine. An Aggregator is the thread-safe sink that many
// Counters merge into, so that the resource cost of an operation spread across
// a worker pool can be read as one consistent total.
//
// Example:
//
//	agg := usage.NewAggregator(usage.NewSystemSource())
//
//	// in each worker:
//	c := agg.ScopedSession(nil)
//	defer c.Halt() // folds the measurements into agg on every exit path
//	doWork()
//
//	// on the completion path:
//	fmt.Println(agg.String())
package usage
