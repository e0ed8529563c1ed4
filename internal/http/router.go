package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/traffic"
)

// RouterConfig holds the middleware settings for NewRouter.
type RouterConfig struct {
	Limiter        *rate.Limiter // nil disables rate limiting
	Tracker        *traffic.Tracker
	RequestTimeout time.Duration
}

// NewRouter wires the handler's routes. Rate limiting and the request timeout
// apply only to /forecasts.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/reference", h.GetReference).Methods(http.MethodGet)

	forecasts := router.PathPrefix("/forecasts").Subrouter()
	forecasts.Use(RateLimitMiddleware(cfg.Limiter, cfg.Tracker))
	if cfg.RequestTimeout > 0 {
		forecasts.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	forecasts.HandleFunc("", h.PostForecast).Methods(http.MethodPost)
	forecasts.HandleFunc("/manual", h.PostManualForecast).Methods(http.MethodPost)
	forecasts.HandleFunc("/{id}", h.GetForecast).Methods(http.MethodGet)
	forecasts.HandleFunc("/{id}/export", h.ExportForecast).Methods(http.MethodGet)
	return router
}
