// Package server implements the demo HTTP service: each request becomes an
// operation on a shared work queue, processed a step at a time by a pool of
// workers that account their resource usage into the operation's aggregators.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/perfgauge/perfgauge/internal/config"
	"github.com/perfgauge/perfgauge/pkg/usage"
)

// Server owns the work queue, the worker pool, and the HTTP surface.
type Server struct {
	cfg *config.Config
	src usage.Source

	queue chan *Operation
	stop  chan struct{}
	wg    sync.WaitGroup

	stats *serverStats

	httpSrv *http.Server
}

// New builds a server from cfg. The measurement source is chosen here, once,
// for the lifetime of the server.
func New(cfg *config.Config) *Server {
	var src usage.Source
	switch cfg.Source {
	case config.SourceProcess:
		src = usage.NewProcessSource()
	default:
		src = usage.NewSystemSource()
	}

	s := &Server{
		cfg:   cfg,
		src:   src,
		queue: make(chan *Operation, cfg.QueueSize),
		stop:  make(chan struct{}),
		stats: newServerStats(),
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes. Exposed separately so tests can drive the
// server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/primes", s.handlePrimes)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Run starts the worker pool and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.StartWorkers()
	defer s.StopWorkers()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	log.Info().Str("listen", s.cfg.Listen).Int("workers", s.workerCount()).Msg("serving")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// StartWorkers launches the worker pool. Split from Run so tests can exercise
// the queue without a listener.
func (s *Server) StartWorkers() {
	for i := 0; i < s.workerCount(); i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// StopWorkers signals the pool and waits for it to drain.
func (s *Server) StopWorkers() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Server) workerCount() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.NumCPU()
}

// worker pulls operations off the queue and advances them one step at a time.
// The goroutine pins itself to its OS thread so per-thread CPU readings hold
// for the counters it runs.
func (s *Server) worker(id int) {
	defer s.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log.Debug().Int("worker", id).Msg("worker started")

	for {
		select {
		case <-s.stop:
			return
		case op := <-s.queue:
			if op.Closed() {
				continue
			}

			s.runStep(op)

			if op.Full() {
				s.finish(op, http.StatusOK)
				continue
			}

			select {
			case s.queue <- op:
			default:
				// The queue cannot take the operation back; acknowledge
				// the request with whatever results it has.
				s.finish(op, http.StatusAccepted)
			}
		}
	}
}

// runStep measures one step of work into the operation's aggregator. The
// deferred halt is the scoped-release guarantee: whatever the step does, its
// measurements are folded in exactly once.
func (s *Server) runStep(op *Operation) {
	c := op.Perf.ScopedSession(nil)
	defer c.Halt()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("op", op.ID).Msg("worker step failed")
			s.finish(op, http.StatusInternalServerError)
		}
	}()

	op.step(s.src)
}

// finish closes the operation, if nobody else has, and records its outcome.
func (s *Server) finish(op *Operation, status int) {
	if !op.complete(status) {
		return
	}
	s.stats.operationDone(status, time.Since(op.started))
	log.Info().
		Str("op", op.ID).
		Int("status", status).
		Str("total", op.Perf.String()).
		Msg("operation complete")
}

func (s *Server) handlePrimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := newOperation(s.src, s.cfg.SieveLimit, s.cfg.TargetPrimes)
	s.stats.operationStarted()

	select {
	case s.queue <- op:
	default:
		s.stats.operationRejected()
		http.Error(w, "work queue full", http.StatusServiceUnavailable)
		return
	}

	timeout := time.NewTimer(s.cfg.RequestTimeout.Std())
	defer timeout.Stop()

	select {
	case <-op.done:
	case <-timeout.C:
		s.stats.operationTimedOut()
		s.finish(op, http.StatusAccepted)
		<-op.done
	case <-r.Context().Done():
		s.finish(op, http.StatusAccepted)
		return
	}

	s.writeOperation(w, op)
}

// writeOperation renders the operation result: the primes found, then the
// resource summaries for the whole operation and for each strategy.
func (s *Server) writeOperation(w http.ResponseWriter, op *Operation) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(op.Status())

	fmt.Fprintf(w, "%v\n", op.Results())
	fmt.Fprintf(w, "\nTotal: [%s]", op.Perf)
	fmt.Fprintf(w, "\n\tSieve: [%s]", op.Sieve)
	fmt.Fprintf(w, "\n\tTrial: [%s]\n", op.Trial)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.stats.writeJSON(w, s.workerCount(), len(s.queue))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
