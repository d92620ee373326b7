package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CacheSymbols = "symbols"
	CacheRates   = "rates"

	ResultHit  = "hit"
	ResultMiss = "miss"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SymbolsRequestsTotal    prometheus.Counter
	ListRequestsTotal       prometheus.Counter
	ConversionRequestsTotal prometheus.Counter

	CacheLookupsTotal    *prometheus.CounterVec
	UpstreamCallsTotal   *prometheus.CounterVec
	UpstreamCallDuration *prometheus.HistogramVec
}

// NewMetrics registers the service collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		SymbolsRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "symbols_requests_total",
				Help: "Total number of supported currency requests",
			},
		),

		ListRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_list_requests_total",
				Help: "Total number of exchange rate list requests",
			},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		UpstreamCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_calls_total",
				Help: "Calls to the upstream exchange rate API by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),

		UpstreamCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_call_duration_seconds",
				Help:    "Upstream exchange rate API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		),
	}
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}
