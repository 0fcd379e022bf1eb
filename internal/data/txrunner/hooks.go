package txrunner

import (
	"time"

	"github.com/yungbote/sessioncache/internal/observability"
)

// Hooks captures scope-level observability events.
type Hooks interface {
	ObserveScope(op, outcome string, dur time.Duration)
	IncJoin(op string)
	ObserveCache(policy string, hits, misses int64)
	ObserveWrites(driver, status string, n int)
}

type noopHooks struct{}

func (noopHooks) ObserveScope(string, string, time.Duration) {}
func (noopHooks) IncJoin(string)                            {}
func (noopHooks) ObserveCache(string, int64, int64)         {}
func (noopHooks) ObserveWrites(string, string, int)         {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates hooks backed by observability metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveScope(op, outcome string, dur time.Duration) {
	h.metrics.ObserveScope(op, outcome, dur)
}

func (h *observabilityHooks) IncJoin(op string) {
	h.metrics.IncScopeJoin(op)
}

func (h *observabilityHooks) ObserveCache(policy string, hits, misses int64) {
	h.metrics.AddCacheLookups(policy, hits, misses)
}

func (h *observabilityHooks) ObserveWrites(driver, status string, n int) {
	h.metrics.AddStoreWrites(driver, status, n)
}
