package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchesTotal       *prometheus.CounterVec
	CacheHitsTotal      prometheus.Counter
	GatewayRetriesTotal prometheus.Counter
	PollCyclesTotal     prometheus.Counter

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec

	Registry *prometheus.Registry
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tours_searches_total",
			Help: "Search attempts by terminal outcome.",
		}, []string{"outcome"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tours_cache_hits_total",
			Help: "Searches served from the tours cache without network calls.",
		}),
		GatewayRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tours_gateway_retries_total",
			Help: "Transient gateway failures retried with backoff.",
		}),
		PollCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tours_poll_cycles_total",
			Help: "Poll requests issued against the pricing gateway.",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		Registry: reg,
	}

	reg.MustRegister(
		m.SearchesTotal,
		m.CacheHitsTotal,
		m.GatewayRetriesTotal,
		m.PollCyclesTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
	)

	return m
}

func (m *Metrics) IncSearchOutcome(outcome string) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCacheHits() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) IncGatewayRetries() {
	m.GatewayRetriesTotal.Inc()
}

func (m *Metrics) IncPollCycles() {
	m.PollCyclesTotal.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
