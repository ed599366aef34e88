// Package metrics exposes query-engine counters and histograms via
// github.com/prometheus/client_golang, grounded on open-policy-agent's
// storage/disk convention of taking a prometheus.Registerer at
// construction time rather than reaching for the global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric cmd/server and the embedding API record
// against, bound to a single prometheus.Registerer. OptimizerRules is
// registered but nothing increments it.
type Registry struct {
	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	RowsReturned   prometheus.Histogram
	OptimizerRules prometheus.Counter
}

// New registers every metric against reg and returns the bound Registry.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cypherdb",
			Name:      "queries_total",
			Help:      "Total number of queries executed, labelled by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cypherdb",
			Name:      "query_duration_seconds",
			Help:      "Query execution latency from parse through result materialization.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"clause"}),
		RowsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cypherdb",
			Name:      "rows_returned",
			Help:      "Number of rows a query's RETURN produced.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		OptimizerRules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cypherdb",
			Name:      "optimizer_rewrites_total",
			Help:      "Total number of plan rewrites the optimizer applied across all passes.",
		}),
	}
	reg.MustRegister(r.QueriesTotal, r.QueryDuration, r.RowsReturned, r.OptimizerRules)
	return r
}

// ObserveQuery records one query's outcome, latency, and row count.
func (r *Registry) ObserveQuery(clause string, seconds float64, rows int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.QueriesTotal.WithLabelValues(outcome).Inc()
	r.QueryDuration.WithLabelValues(clause).Observe(seconds)
	if err == nil {
		r.RowsReturned.Observe(float64(rows))
	}
}

// Handler returns cmd/server's /metrics HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
