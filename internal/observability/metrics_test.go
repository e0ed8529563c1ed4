package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetrics_Usable verifies that label dimensions match usage in the http,
// service, cache and publish packages.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("POST", "/forecasts", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/forecasts/{id}").Observe(0.01)
	ForecastBatchesTotal.WithLabelValues("upload", "success").Inc()
	ForecastBatchesTotal.WithLabelValues("manual", "failure").Inc()
	ForecastRowsTotal.Add(4)
	ForecastDuration.Observe(0.0002)
	ForecastFailuresTotal.WithLabelValues("no_matching_range").Inc()
	CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	PublishTotal.WithLabelValues("success").Inc()
	RateLimitDeniedTotal.Inc()
}

type fixedCounter struct{ requests, denials int }

func (f fixedCounter) RequestCount(time.Duration) int { return f.requests }
func (f fixedCounter) DenialCount(time.Duration) int  { return f.denials }

func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	RegisterWindowGauges(fixedCounter{requests: 7, denials: 2}, time.Minute)
	// second registration must not panic on duplicate collectors
	RegisterWindowGauges(fixedCounter{}, time.Minute)
	HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx").Inc()

	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"httpRequestsTotal", "requestsInWindow 7", "rateLimitRejectsInWindow 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
