package server

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/perfgauge/perfgauge/internal/primes"
	"github.com/perfgauge/perfgauge/pkg/usage"
)

// PrimeStats tracks one prime-finding strategy: hit/miss counts plus the
// resources the strategy consumed, accumulated across every worker that
// touched the operation.
type PrimeStats struct {
	Perf   *usage.Aggregator
	hits   atomic.Int64
	misses atomic.Int64
}

func newPrimeStats(src usage.Source) *PrimeStats {
	return &PrimeStats{Perf: usage.NewAggregator(src)}
}

func (s *PrimeStats) String() string {
	return fmt.Sprintf("Hits: %d; Misses: %d :: (%s)", s.hits.Load(), s.misses.Load(), s.Perf)
}

// Operation is one logical unit of client work: discover some quantity of
// primes. It is passed between workers through the queue until it is full,
// each worker measuring its own contribution into the shared aggregators.
type Operation struct {
	ID string

	// Perf accumulates resource usage for the whole operation.
	Perf *usage.Aggregator

	// Per-strategy breakdowns.
	Sieve *PrimeStats
	Trial *PrimeStats

	started time.Time

	mu      sync.Mutex
	results map[int]struct{}

	full   atomic.Bool
	closed atomic.Bool
	status atomic.Int32
	done   chan struct{}

	// rng is handed between workers with the operation itself; the queue
	// handoff orders access, so no lock is needed.
	rng *rand.Rand

	sieveLimit   int
	targetPrimes int
}

func newOperation(src usage.Source, sieveLimit, targetPrimes int) *Operation {
	return &Operation{
		ID:           ksuid.New().String(),
		Perf:         usage.NewAggregator(src),
		Sieve:        newPrimeStats(src),
		Trial:        newPrimeStats(src),
		started:      time.Now(),
		results:      make(map[int]struct{}),
		done:         make(chan struct{}),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sieveLimit:   sieveLimit,
		targetPrimes: targetPrimes,
	}
}

// step performs one slice of work. Rarely it runs the memory-hungry sieve;
// usually it trial-tests random candidates, which is CPU-hungry. Neither
// speed nor efficiency is the point: the two paths give the counters
// distinctly shaped work to account for.
func (op *Operation) step(src usage.Source) {
	if op.rng.Intn(2000) == 1 {
		op.sieveStep(src)
	} else {
		op.trialStep()
	}
}

// sieveStep finds primes with a sieve. It publishes the compute segment via a
// split before the bookkeeping segment, so the expensive part is visible in
// the stats while the session is still open.
func (op *Operation) sieveStep(src usage.Source) {
	c := usage.NewCounter(src).Start()

	limit := 2 + op.rng.Intn(op.sieveLimit)
	found := primes.Sieve(limit)

	c.Split()
	op.Sieve.Perf.MergeLast(c)

	op.addResults(found)
	op.Sieve.hits.Add(int64(len(found)))
	op.Sieve.misses.Add(int64(limit - len(found)))

	c.Halt()
	op.Sieve.Perf.MergeLast(c)

	if len(found) > op.targetPrimes {
		op.full.Store(true)
	}
}

// trialStep tests random candidates until one is prime. The scoped session
// guarantees the measurements land in the trial stats on every exit path.
func (op *Operation) trialStep() {
	c := op.Trial.Perf.ScopedSession(nil)
	defer c.Halt()

	for {
		candidate := op.rng.Intn(math.MaxInt32)
		if primes.IsPrime(candidate) {
			op.addResult(candidate)
			op.Trial.hits.Add(1)
			break
		}
		op.Trial.misses.Add(1)
	}

	if op.rng.Intn(5000) == 1 {
		op.full.Store(true)
	}
}

func (op *Operation) addResult(p int) {
	op.mu.Lock()
	op.results[p] = struct{}{}
	op.mu.Unlock()
}

func (op *Operation) addResults(ps []int) {
	op.mu.Lock()
	for _, p := range ps {
		op.results[p] = struct{}{}
	}
	op.mu.Unlock()
}

// Results returns the discovered primes in ascending order.
func (op *Operation) Results() []int {
	op.mu.Lock()
	out := make([]int, 0, len(op.results))
	for p := range op.results {
		out = append(out, p)
	}
	op.mu.Unlock()
	sort.Ints(out)
	return out
}

// Full reports whether the operation has all the results it needs.
func (op *Operation) Full() bool { return op.full.Load() }

// Closed reports whether the operation has been completed.
func (op *Operation) Closed() bool { return op.closed.Load() }

// complete closes the operation with the given HTTP status. Only the first
// caller wins; later calls are no-ops. It reports whether this call closed
// the operation.
func (op *Operation) complete(status int) bool {
	if !op.closed.CompareAndSwap(false, true) {
		return false
	}
	op.status.Store(int32(status))
	close(op.done)
	return true
}

// Status returns the HTTP status the operation was completed with. Only
// meaningful after the done channel is closed.
func (op *Operation) Status() int {
	s := op.status.Load()
	if s == 0 {
		return http.StatusOK
	}
	return int(s)
}
