package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/phuslu/log"
)

// serverStats tracks service-wide operation counts and completion latencies.
// Latencies go into an HDR histogram (1µs to 10min, 3 significant figures) so
// percentiles stay cheap to read no matter how many operations have run.
type serverStats struct {
	started   time.Time
	opsStart  atomic.Int64
	opsDone   atomic.Int64
	opsOK     atomic.Int64
	opsReject atomic.Int64
	opsTimed  atomic.Int64

	histMu sync.Mutex
	hist   *hdrhistogram.Histogram
}

func newServerStats() *serverStats {
	return &serverStats{
		started: time.Now(),
		hist:    hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
	}
}

func (st *serverStats) operationStarted()  { st.opsStart.Add(1) }
func (st *serverStats) operationRejected() { st.opsReject.Add(1) }
func (st *serverStats) operationTimedOut() { st.opsTimed.Add(1) }

func (st *serverStats) operationDone(status int, elapsed time.Duration) {
	st.opsDone.Add(1)
	if status == http.StatusOK {
		st.opsOK.Add(1)
	}

	micros := elapsed.Microseconds()
	if micros < 1 {
		micros = 1
	}
	st.histMu.Lock()
	// RecordValue only fails for values outside the histogram range.
	if err := st.hist.RecordValue(micros); err != nil {
		log.Warn().Err(err).Msg("latency outside histogram range")
	}
	st.histMu.Unlock()
}

// statsResponse is the /stats JSON payload.
type statsResponse struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Workers       int     `json:"workers"`
	QueueDepth    int     `json:"queueDepth"`

	Operations struct {
		Started   int64 `json:"started"`
		Completed int64 `json:"completed"`
		Succeeded int64 `json:"succeeded"`
		Rejected  int64 `json:"rejected"`
		TimedOut  int64 `json:"timedOut"`
	} `json:"operations"`

	LatencyMs struct {
		P50 float64 `json:"p50"`
		P90 float64 `json:"p90"`
		P99 float64 `json:"p99"`
		Max float64 `json:"max"`
	} `json:"latencyMs"`
}

func (st *serverStats) writeJSON(w http.ResponseWriter, workers, queueDepth int) {
	var resp statsResponse
	resp.UptimeSeconds = time.Since(st.started).Seconds()
	resp.Workers = workers
	resp.QueueDepth = queueDepth
	resp.Operations.Started = st.opsStart.Load()
	resp.Operations.Completed = st.opsDone.Load()
	resp.Operations.Succeeded = st.opsOK.Load()
	resp.Operations.Rejected = st.opsReject.Load()
	resp.Operations.TimedOut = st.opsTimed.Load()

	st.histMu.Lock()
	resp.LatencyMs.P50 = float64(st.hist.ValueAtQuantile(50)) / 1000.0
	resp.LatencyMs.P90 = float64(st.hist.ValueAtQuantile(90)) / 1000.0
	resp.LatencyMs.P99 = float64(st.hist.ValueAtQuantile(99)) / 1000.0
	resp.LatencyMs.Max = float64(st.hist.Max()) / 1000.0
	st.histMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		log.Error().Err(err).Msg("writing stats response")
	}
}
