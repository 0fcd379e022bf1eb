package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/sessioncache/internal/platform/logger"
)

type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	scopeTotal    *CounterVec
	scopeDuration *HistogramVec
	scopeJoins    *CounterVec
	cacheLookups  *CounterVec
	storeWrites   *CounterVec
	corruption    *CounterVec
	snapshots     *CounterVec
}

type exporter interface {
	WritePrometheus(w io.Writer) error
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide registry once. It returns nil when metrics are
// disabled, and every Metrics method is a no-op on a nil receiver.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		log.Info("metrics enabled")
	})
	return instance
}

// NewMetrics returns an independent registry.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sc_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("sc_api_inflight_requests", "In-flight API requests."),
		scopeTotal:  NewCounterVec("sc_scope_total", "Transaction scopes by operation and outcome.", []string{"op", "outcome"}),
		scopeDuration: NewHistogramVec(
			"sc_scope_duration_seconds",
			"Transaction scope lifetime in seconds by outcome.",
			[]string{"outcome"},
			nil,
		),
		scopeJoins:   NewCounterVec("sc_scope_joins_total", "Calls that joined an already active scope.", []string{"op"}),
		cacheLookups: NewCounterVec("sc_cache_lookups_total", "Identity cache lookups by policy and result.", []string{"policy", "result"}),
		storeWrites:  NewCounterVec("sc_store_writes_total", "Record store writes by driver and status.", []string{"driver", "status"}),
		corruption:   NewCounterVec("sc_data_corruption_total", "Demo runs whose retained view changed underneath the caller.", []string{"policy", "strategy"}),
		snapshots:    NewCounterVec("sc_snapshots_total", "Snapshots created by strategy.", []string{"strategy"}),
	}
}

func (m *Metrics) exporters() []exporter {
	return []exporter{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.scopeTotal,
		m.scopeDuration,
		m.scopeJoins,
		m.cacheLookups,
		m.storeWrites,
		m.corruption,
		m.snapshots,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, e := range m.exporters() {
		if err := e.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveScope(op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.scopeTotal.Inc(strings.TrimSpace(op), outcome)
	m.scopeDuration.Observe(dur.Seconds(), outcome)
}

func (m *Metrics) ScopeCount(op, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.scopeTotal.Value(op, outcome)
}

func (m *Metrics) IncScopeJoin(op string) {
	if m == nil {
		return
	}
	m.scopeJoins.Inc(strings.TrimSpace(op))
}

func (m *Metrics) AddCacheLookups(policy string, hits, misses int64) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(float64(hits), policy, "hit")
	m.cacheLookups.Add(float64(misses), policy, "miss")
}

func (m *Metrics) CacheLookups(policy, result string) float64 {
	if m == nil {
		return 0
	}
	return m.cacheLookups.Value(policy, result)
}

func (m *Metrics) AddStoreWrites(driver, status string, n int) {
	if m == nil {
		return
	}
	m.storeWrites.Add(float64(n), driver, status)
}

func (m *Metrics) StoreWrites(driver, status string) float64 {
	if m == nil {
		return 0
	}
	return m.storeWrites.Value(driver, status)
}

func (m *Metrics) IncSnapshot(strategy string) {
	if m == nil {
		return
	}
	m.snapshots.Inc(strategy)
}

func (m *Metrics) IncDataCorruption(policy, strategy string) {
	if m == nil {
		return
	}
	m.corruption.Inc(policy, strategy)
}

func (m *Metrics) DataCorruption(policy, strategy string) float64 {
	if m == nil {
		return 0
	}
	return m.corruption.Value(policy, strategy)
}
