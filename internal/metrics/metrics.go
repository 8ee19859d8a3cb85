// Package metrics provides the Prometheus metrics exported by mdcat.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Create it with New; the zero value
// is not usable. A nil *Metrics is valid and records nothing.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	ConversionsTotal *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheLookupsTotal *prometheus.CounterVec

	RecordsLoaded *prometheus.GaugeVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdcat_operations_total",
				Help: "Total number of subject area client operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdcat_operation_duration_seconds",
				Help:    "Duration of subject area client operations in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		ConversionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdcat_conversions_total",
				Help: "Total number of bean conversions by bean class, variant and result",
			},
			[]string{"bean_class", "variant", "result"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdcat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdcat_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CacheLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdcat_store_cache_lookups_total",
				Help: "Store read cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		RecordsLoaded: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mdcat_records_loaded",
				Help: "Number of records in the in-memory repository",
			},
			[]string{"kind"},
		),
	}
}

// RecordOperation records the outcome and duration of a client operation.
func (m *Metrics) RecordOperation(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) RecordConversion(beanClass, variant string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ConversionsTotal.WithLabelValues(beanClass, variant, result).Inc()
}

func (m *Metrics) RecordHTTPRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, statusLabel(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
}

// SetRecordCounts updates the number of loaded elements and relationships.
func (m *Metrics) SetRecordCounts(elements, relationships int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.WithLabelValues("element").Set(float64(elements))
	m.RecordsLoaded.WithLabelValues("relationship").Set(float64(relationships))
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}
