// Package metrics provides Prometheus metrics for the Axievale API.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axievale_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "axievale_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Valuation Metrics
	ValuationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axievale_valuations_total",
			Help: "Total valuations computed, by outcome",
		},
		[]string{"outcome"}, // "priced", "no_market_data", "error"
	)

	ValuationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "axievale_valuation_duration_seconds",
			Help:    "End-to-end time to compute one valuation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ValuationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "axievale_valuation_confidence",
			Help:    "Confidence scores of computed valuations",
			Buckets: []float64{0, 25, 50, 60, 70, 80, 90, 100},
		},
	)

	// Extension Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axievale_valuation_cache_hits_total",
			Help: "Extension valuation cache hit count",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axievale_valuation_cache_misses_total",
			Help: "Extension valuation cache miss count",
		},
	)

	// Admission Metrics
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axievale_admissions_total",
			Help: "Admission control decisions",
		},
		[]string{"gate", "outcome"}, // gate: "quota"/"rate", outcome: "admitted"/"unauthorized"/"payment_required"/"rate_limited"/"fail_open"
	)

	// Marketplace API Metrics
	MarketplaceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axievale_marketplace_requests_total",
			Help: "Outbound marketplace GraphQL requests by operation and result",
		},
		[]string{"operation", "result"}, // result: "ok" or "error"
	)

	MarketplaceLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "axievale_marketplace_latency_seconds",
			Help:    "Marketplace GraphQL call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// Gemini Insight Metrics
	GeminiRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axievale_gemini_requests_total",
			Help: "Total Gemini insight requests",
		},
	)

	GeminiAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "axievale_gemini_api_latency_seconds",
			Help:    "Gemini API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	GeminiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axievale_gemini_errors_total",
			Help: "Gemini API errors by type",
		},
		[]string{"type"}, // "network", "read", "api", "parse", "empty"
	)

	// Market Pulse Metrics
	PulseRecentSales = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "axievale_pulse_recent_sales",
			Help: "Number of recent sales seen in the last market pulse sample",
		},
	)

	PulseAvgSalePriceUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "axievale_pulse_avg_sale_price_usd",
			Help: "Average USD sale price in the last market pulse sample",
		},
	)
)
