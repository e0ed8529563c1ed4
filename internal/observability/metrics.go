package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 increases on large uploads.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Forecast batches by source (upload, manual) and outcome (success, failure).
	ForecastBatchesTotal *prometheus.CounterVec

	// Rows forecast successfully. rate() gives throughput independent of batch size.
	ForecastRowsTotal prometheus.Counter

	// Time to compute one batch, excluding parsing and cache writes.
	ForecastDuration prometheus.Histogram

	// Batch failures by kind: no_matching_range, no_matching_combination, other.
	// A steady stream of no_matching_combination means the reference table has a hole users hit.
	ForecastFailuresTotal *prometheus.CounterVec

	// Cache operations by op (get, set) and result (hit, miss, ok, error).
	CacheOperationsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	// Kafka publish attempts by outcome (success, error).
	PublishTotal *prometheus.CounterVec

	windowGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ForecastBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastBatchesTotal",
			Help: "Total number of forecast batches by source and outcome",
		},
		[]string{"source", "outcome"},
	)
	ForecastRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastRowsTotal",
			Help: "Total number of rows forecast successfully",
		},
	)
	ForecastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastDurationSeconds",
			Help:    "Time to compute one forecast batch in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
	ForecastFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastFailuresTotal",
			Help: "Total number of aborted forecast batches by failure kind",
		},
		[]string{"kind"},
	)
	CacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheOperationsTotal",
			Help: "Total number of forecast cache operations by op and result",
		},
		[]string{"op", "result"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publishTotal",
			Help: "Total number of forecast batch publish attempts by outcome",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ForecastBatchesTotal, ForecastRowsTotal, ForecastDuration, ForecastFailuresTotal,
		CacheOperationsTotal,
		RateLimitDeniedTotal,
		PublishTotal,
	)
}

// WindowCounter reports counts over a trailing window. *traffic.Tracker implements it.
type WindowCounter interface {
	RequestCount(window time.Duration) int
	DenialCount(window time.Duration) int
}

// RegisterWindowGauges registers load and rejects gauges backed by counter.
// Call once from main after config load; later calls are no-ops.
func RegisterWindowGauges(counter WindowCounter, window time.Duration) {
	windowGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "requestsInWindow",
					Help: "Forecast requests in the sliding overload window",
				},
				func() float64 { return float64(counter.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in the sliding overload window",
				},
				func() float64 { return float64(counter.DenialCount(window)) },
			),
		)
	})
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
