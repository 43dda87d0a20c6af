// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"
)

type metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	results  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_search",
			Name:      "queries_total",
			Help:      "Query requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paper_search",
			Name:      "query_duration_seconds",
			Help:      "Time spent answering query requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paper_search",
			Name:      "query_results",
			Help:      "Number of results returned per successful query.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
	}
	reg.MustRegister(m.queries, m.duration, m.results)
	return m
}

func (m *metrics) observe(outcome string, start time.Time) {
	m.queries.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
