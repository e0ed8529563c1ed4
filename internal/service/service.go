package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kjstillabower/overnight-forecast-service/internal/cache"
	"github.com/kjstillabower/overnight-forecast-service/internal/forecast"
	"github.com/kjstillabower/overnight-forecast-service/internal/models"
	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/reference"
)

// ErrNotFound is returned by Get when no batch is stored under the id.
var ErrNotFound = errors.New("forecast not found")

// Publisher ships a completed batch to an external sink. Failures are logged and
// do not fail the forecast.
type Publisher interface {
	Publish(ctx context.Context, batch models.ForecastBatch) error
}

// Request is one batch of observations to forecast.
type Request struct {
	Source       string
	Filename     string
	Columns      []string
	Observations []models.Observation
}

// ForecastService runs batches against the reference table and keeps the results
// in the cache under their id and under cache.LatestKey.
type ForecastService struct {
	table     *reference.Table
	cache     cache.Cache
	ttl       time.Duration
	clock     clockwork.Clock
	publisher Publisher
}

// Option configures a ForecastService.
type Option func(*ForecastService)

// WithClock sets the clock used for ComputedAt. Defaults to the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *ForecastService) { s.clock = c }
}

// WithPublisher attaches a sink that receives every successful batch.
func WithPublisher(p Publisher) Option {
	return func(s *ForecastService) { s.publisher = p }
}

// NewForecastService creates a ForecastService. ttl is how long batches stay retrievable.
func NewForecastService(table *reference.Table, c cache.Cache, ttl time.Duration, opts ...Option) *ForecastService {
	s := &ForecastService{
		table: table,
		cache: c,
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast computes every row of req. If any row fails the whole batch fails,
// nothing is stored, and the returned error wraps a *forecast.RowError.
func (s *ForecastService) Forecast(ctx context.Context, req Request) (models.ForecastBatch, error) {
	logger := observability.LoggerFromContext(ctx)
	if err := ctx.Err(); err != nil {
		return models.ForecastBatch{}, err
	}

	start := s.clock.Now()
	rows, err := forecast.Process(req.Observations, s.table)
	observability.ForecastDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		kind := failureKind(err)
		observability.ForecastBatchesTotal.WithLabelValues(req.Source, "failure").Inc()
		observability.ForecastFailuresTotal.WithLabelValues(kind).Inc()
		logger.Info("forecast failed",
			zap.String("source", req.Source),
			zap.String("filename", req.Filename),
			zap.Int("rows", len(req.Observations)),
			zap.String("kind", kind),
			zap.Error(err))
		return models.ForecastBatch{}, fmt.Errorf("forecast %s batch: %w", req.Source, err)
	}
	observability.ForecastBatchesTotal.WithLabelValues(req.Source, "success").Inc()
	observability.ForecastRowsTotal.Add(float64(len(rows)))

	batch := models.ForecastBatch{
		ID:         uuid.NewString(),
		Source:     req.Source,
		Filename:   req.Filename,
		Columns:    req.Columns,
		Rows:       rows,
		ComputedAt: s.clock.Now().UTC(),
	}
	logger = logger.With(zap.String("forecast_id", batch.ID))

	for _, key := range []string{batch.ID, cache.LatestKey} {
		if err := s.cache.Set(ctx, key, batch, s.ttl); err != nil {
			observability.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
			logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
			continue
		}
		observability.CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, batch); err != nil {
			observability.PublishTotal.WithLabelValues("error").Inc()
			logger.Warn("publish failed", zap.Error(err))
		} else {
			observability.PublishTotal.WithLabelValues("success").Inc()
		}
	}

	logger.Info("forecast computed",
		zap.String("source", batch.Source),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", s.clock.Since(start)))
	return batch, nil
}

// Get returns a stored batch by id. cache.LatestKey returns the most recent batch.
func (s *ForecastService) Get(ctx context.Context, id string) (models.ForecastBatch, error) {
	batch, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		observability.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		return models.ForecastBatch{}, fmt.Errorf("load forecast %s: %w", id, err)
	}
	if !ok {
		observability.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return models.ForecastBatch{}, ErrNotFound
	}
	observability.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	return batch, nil
}

// Reference returns the K table rows in table order.
func (s *ForecastService) Reference() []reference.Entry {
	return s.table.Entries()
}

// ReferenceGrid returns the K table pivoted to wind rows by cloud columns.
func (s *ForecastService) ReferenceGrid() reference.Grid {
	return reference.Wide(s.table.Entries())
}

// failureKind returns a stable metric label for a batch error.
func failureKind(err error) string {
	var nmr *reference.NoMatchingRangeError
	var nmc *reference.NoMatchingCombinationError
	switch {
	case errors.As(err, &nmr):
		return "no_matching_range"
	case errors.As(err, &nmc):
		return "no_matching_combination"
	case errors.Is(err, forecast.ErrNonFiniteInput):
		return "non_finite_input"
	default:
		return "other"
	}
}
