package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/overnight-forecast-service/internal/cache"
	"github.com/kjstillabower/overnight-forecast-service/internal/forecast"
	"github.com/kjstillabower/overnight-forecast-service/internal/lifecycle"
	"github.com/kjstillabower/overnight-forecast-service/internal/models"
	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/service"
	"github.com/kjstillabower/overnight-forecast-service/internal/tabular"
	"github.com/kjstillabower/overnight-forecast-service/internal/traffic"
	"github.com/kjstillabower/overnight-forecast-service/internal/validation"
)

// ExportFilename is the attachment name of the CSV export.
const ExportFilename = "temperature_forecasts_report.csv"

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	OverloadWindow       time.Duration
	OverloadThresholdPct int
	RateLimitRPS         int
	StartTime            time.Time
	// CachePing, when set, is called to check cache reachability. Used for the memcached and redis backends.
	CachePing func(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	forecastService  *service.ForecastService
	tracker          *traffic.Tracker
	healthConfig     *HealthConfig
	logger           *zap.Logger
	maxUploadBytes   int64
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. tracker and healthConfig may be nil.
func NewHandler(
	forecastService *service.ForecastService,
	tracker *traffic.Tracker,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		forecastService: forecastService,
		tracker:         tracker,
		healthConfig:    healthConfig,
		logger:          logger,
		maxUploadBytes:  maxUploadBytes,
	}
}

// PostForecast handles POST /forecasts. The CSV comes from the multipart field
// "file" or, for any other content type, from the raw body.
func (h *Handler) PostForecast(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	body, filename, err := h.uploadedFile(r)
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}
	defer body.Close()

	columns, observations, err := tabular.ReadObservations(body)
	if err != nil {
		h.writeUploadError(w, r, err)
		return
	}

	h.runForecast(w, r, service.Request{
		Source:       models.SourceUpload,
		Filename:     filename,
		Columns:      columns,
		Observations: observations,
	})
}

func (h *Handler) uploadedFile(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, r.URL.Query().Get("filename"), nil
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, "", err
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	return f, hdr.Filename, nil
}

func (h *Handler) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	h.record(traffic.Failure)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds the size limit")
	case errors.Is(err, tabular.ErrMissingColumns):
		writeError(w, r, http.StatusBadRequest, "MISSING_COLUMNS", err.Error())
	default:
		writeError(w, r, http.StatusBadRequest, "INVALID_CSV", err.Error())
	}
}

// PostManualForecast handles POST /forecasts/manual with a single JSON observation.
func (h *Handler) PostManualForecast(w http.ResponseWriter, r *http.Request) {
	var in validation.ManualInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.record(traffic.Failure)
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "request body must be a JSON observation: "+err.Error())
		return
	}

	obs, err := validation.ValidateManual(in)
	if err != nil {
		h.record(traffic.Failure)
		writeErrorDetails(w, r, http.StatusBadRequest, "INVALID_INPUT", "observation out of range", strings.Split(err.Error(), "\n"))
		return
	}

	h.runForecast(w, r, service.Request{
		Source:       models.SourceManual,
		Columns:      tabular.DefaultColumns(),
		Observations: []models.Observation{obs},
	})
}

func (h *Handler) runForecast(w http.ResponseWriter, r *http.Request, req service.Request) {
	batch, err := h.forecastService.Forecast(r.Context(), req)
	if err != nil {
		h.record(traffic.Failure)
		var rowErr *forecast.RowError
		switch {
		case errors.As(err, &rowErr):
			writeError(w, r, http.StatusUnprocessableEntity, "FORECAST_FAILED", rowErr.Error())
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			writeError(w, r, http.StatusServiceUnavailable, "TIMEOUT", "request timed out")
		default:
			writeInternalError(w, r, err)
		}
		return
	}
	h.record(traffic.Success)
	w.Header().Set("Location", "/forecasts/"+batch.ID)
	writeJSON(w, r, http.StatusCreated, batch)
}

// GetForecast handles GET /forecasts/{id}. The id "latest" returns the most recent batch.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, batch)
}

// ExportForecast handles GET /forecasts/{id}/export as a CSV attachment with the
// overnight minimum appended to the original columns.
func (h *Handler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.loadBatch(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := tabular.WriteForecasts(&buf, batch.Columns, batch.Rows); err != nil {
		writeInternalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ExportFilename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) loadBatch(w http.ResponseWriter, r *http.Request) (models.ForecastBatch, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		id = cache.LatestKey
	}
	batch, err := h.forecastService.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no forecast stored under "+id)
		return models.ForecastBatch{}, false
	}
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("forecast lookup failed", zap.String("id", id), zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "unable to load forecast")
		return models.ForecastBatch{}, false
	}
	return batch, true
}

// GetReference handles GET /reference. ?format=grid returns the wide grid with
// missing cells as null; otherwise the long-form entries in table order.
func (h *Handler) GetReference(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "grid" {
		writeJSON(w, r, http.StatusOK, h.forecastService.ReferenceGrid())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"entries": h.forecastService.Reference(),
	})
}

func (h *Handler) record(o traffic.Outcome) {
	if h.tracker != nil {
		h.tracker.Record(o)
	}
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	checks := map[string]string{"reference": "healthy"}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if err := h.healthConfig.CachePing(r.Context()); err != nil {
			checks["cache"] = "unhealthy"
			if result.status == "healthy" {
				result = healthResult{"degraded", http.StatusServiceUnavailable, "cache_unreachable"}
			}
		} else {
			checks["cache"] = "healthy"
		}
	}

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	resp := map[string]interface{}{
		"status":    result.status,
		"service":   observability.ServiceName,
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if at, ok := lifecycle.ShutdownStarted(); ok {
		resp["shutdownStartedAt"] = at.UTC().Format(time.RFC3339)
	}
	if h.healthConfig != nil && !h.healthConfig.StartTime.IsZero() {
		resp["uptimeSeconds"] = int64(time.Since(h.healthConfig.StartTime).Seconds())
	}
	writeJSON(w, r, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order: shutting-down > overloaded > healthy.
// The cache check in GetHealth can further demote healthy to degraded.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig != nil && h.tracker != nil && h.healthConfig.RateLimitRPS > 0 && h.healthConfig.OverloadWindow > 0 {
		threshold := float64(h.healthConfig.RateLimitRPS) * h.healthConfig.OverloadWindow.Seconds() * float64(h.healthConfig.OverloadThresholdPct) / 100
		if float64(h.tracker.RequestCount(h.healthConfig.OverloadWindow)) > threshold {
			return healthResult{"overloaded", http.StatusServiceUnavailable, "overload_threshold"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes v as JSON with the given status. v is encoded before the
// header goes out; an unencodable value becomes a logged 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody(r, "INTERNAL", "internal error", nil))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// writeError writes the standard error envelope with the correlation ID as requestId.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorDetails(w, r, status, code, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details []string) {
	writeJSON(w, r, status, errorBody(r, code, message, details))
}

func errorBody(r *http.Request, code, message string, details []string) map[string]interface{} {
	body := map[string]interface{}{
		"code":      code,
		"message":   message,
		"requestId": observability.CorrelationID(r.Context()),
	}
	if len(details) > 0 {
		body["details"] = details
	}
	return map[string]interface{}{"error": body}
}

// writeInternalError hides err from the client and logs it at ERROR.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("internal error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
}
