package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/perfgauge/perfgauge/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.QueueSize = 16
	cfg.SieveLimit = 10000
	cfg.TargetPrimes = 5
	// Operations complete probabilistically; a short timeout keeps the test
	// bounded and still exercises the partial-result path.
	cfg.RequestTimeout = config.Duration(300 * time.Millisecond)
	return cfg
}

func TestServerPrimesEndpoint(t *testing.T) {
	s := New(testConfig())
	s.StartWorkers()
	defer s.StopWorkers()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/primes")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Contains(t, []int{http.StatusOK, http.StatusAccepted}, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "Total: [")
	assert.Contains(t, text, "Sieve: [Hits:")
	assert.Contains(t, text, "Trial: [Hits:")
	assert.Contains(t, text, "Active:")
	assert.Contains(t, text, "Lifetime:")
}

func TestServerStatsEndpoint(t *testing.T) {
	s := New(testConfig())
	s.StartWorkers()
	defer s.StopWorkers()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// Complete at least one operation so the stats have something to show.
	resp, err := http.Get(ts.URL + "/primes")
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc := string(body)
	assert.True(t, gjson.Get(doc, "operations.started").Int() >= 1, "operations.started in %s", doc)
	assert.True(t, gjson.Get(doc, "operations.completed").Int() >= 1, "operations.completed in %s", doc)
	assert.Equal(t, int64(2), gjson.Get(doc, "workers").Int())
	assert.True(t, gjson.Get(doc, "uptimeSeconds").Float() > 0)
	assert.True(t, gjson.Get(doc, "latencyMs.p50").Float() >= 0)
}

func TestServerHealthz(t *testing.T) {
	s := New(testConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q, want it to contain %q", rec.Body.String(), "ok")
	}
}

func TestServerRejectsWhenQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 1

	// No workers: the queue stays full once primed.
	s := New(cfg)
	s.queue <- newOperation(s.src, cfg.SieveLimit, cfg.TargetPrimes)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/primes", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /primes with a full queue = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	s := New(testConfig())

	for _, path := range []string{"/primes", "/stats"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s = %d, want %d", path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestServerStatsRecording(t *testing.T) {
	st := newServerStats()
	st.operationStarted()
	st.operationDone(http.StatusOK, 25*time.Millisecond)
	st.operationDone(http.StatusAccepted, 50*time.Millisecond)

	rec := httptest.NewRecorder()
	st.writeJSON(rec, 4, 0)

	doc := rec.Body.String()
	assert.Equal(t, int64(1), gjson.Get(doc, "operations.started").Int())
	assert.Equal(t, int64(2), gjson.Get(doc, "operations.completed").Int())
	assert.Equal(t, int64(1), gjson.Get(doc, "operations.succeeded").Int())
	assert.Equal(t, int64(4), gjson.Get(doc, "workers").Int())

	// 25ms and 50ms recorded: the max must sit near 50ms.
	maxMs := gjson.Get(doc, "latencyMs.max").Float()
	assert.InDelta(t, 50.0, maxMs, 1.0)
}
