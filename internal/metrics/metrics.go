// Package metrics exposes Prometheus counters for store and cache activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linkdesk"

// Metrics holds the application counters.
type Metrics struct {
	CacheLookups *prometheus.CounterVec
	StoreOps     *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Repository cache lookups by table and result (hit, miss, bypass).",
		}, []string{"table", "result"}),
		StoreOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Backing store calls by table, operation and outcome.",
		}, []string{"table", "op", "outcome"}),
	}
}

// Noop returns counters registered on a private registry, for tests and tools.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

// CacheLookup records one cache lookup.
func (m *Metrics) CacheLookup(table, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(table, result).Inc()
}

// StoreOp records one store call.
func (m *Metrics) StoreOp(table, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOps.WithLabelValues(table, op, outcome).Inc()
}
