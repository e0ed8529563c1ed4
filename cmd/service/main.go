package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/overnight-forecast-service/internal/cache"
	"github.com/kjstillabower/overnight-forecast-service/internal/config"
	httphandler "github.com/kjstillabower/overnight-forecast-service/internal/http"
	"github.com/kjstillabower/overnight-forecast-service/internal/lifecycle"
	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/publish"
	"github.com/kjstillabower/overnight-forecast-service/internal/reference"
	"github.com/kjstillabower/overnight-forecast-service/internal/service"
	"github.com/kjstillabower/overnight-forecast-service/internal/traffic"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	table, err := loadReference(cfg.ReferencePath)
	if err != nil {
		logger.Fatal("reference table", zap.String("path", cfg.ReferencePath), zap.Error(err))
	}
	logger.Info("reference table loaded", zap.String("path", cfg.ReferencePath), zap.Int("entries", table.Len()))

	var cacheSvc cache.Cache
	var cachePing func(context.Context) error
	var closers []io.Closer
	switch cfg.CacheBackend {
	case config.BackendMemcached:
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		cacheSvc, cachePing = mc, mc.Ping
		closers = append(closers, mc)
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case config.BackendRedis:
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cacheSvc, cachePing = rc, rc.Ping
		closers = append(closers, rc)
		logger.Info("cache backend: redis", zap.String("addr", cfg.RedisAddr))
	default:
		cacheSvc = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	var opts []service.Option
	if cfg.KafkaEnabled {
		pub := publish.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaWriteTimeout)
		opts = append(opts, service.WithPublisher(pub))
		closers = append(closers, pub)
		logger.Info("kafka publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	forecastService := service.NewForecastService(table, cacheSvc, cfg.CacheTTL, opts...)

	tracker := traffic.NewTracker(nil, 0)
	observability.RegisterWindowGauges(tracker, cfg.OverloadWindow)

	healthConfig := &httphandler.HealthConfig{
		OverloadWindow:       cfg.OverloadWindow,
		OverloadThresholdPct: cfg.OverloadThresholdPct,
		RateLimitRPS:         cfg.RateLimitRPS,
		StartTime:            time.Now(),
		CachePing:            cachePing,
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(forecastService, tracker, healthConfig, logger, cfg.MaxUploadBytes)
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		Limiter:        limiter,
		Tracker:        tracker,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout + 5*time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.BeginShutdown(time.Now())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close", zap.Error(err))
		}
	}
	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// loadReference reads a long-form table from path, or returns the built-in grid when path is empty.
func loadReference(path string) (*reference.Table, error) {
	if path == "" {
		return reference.CanonicalTable()
	}
	return reference.LoadTable(path)
}
