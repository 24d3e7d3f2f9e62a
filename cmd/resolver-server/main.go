// cmd/resolver-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"geoquery-resolver/internal/api"
	"geoquery-resolver/internal/common/cache"
	"geoquery-resolver/internal/common/config"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/common/observability"
	"geoquery-resolver/internal/resolver"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/internal/resolver/completeness"
	"geoquery-resolver/internal/resolver/location"
	"geoquery-resolver/internal/resolver/temporal"
	"geoquery-resolver/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting resolver server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err), zap.String("path", cfg.Catalog.Path))
	}
	zapLog.Info("catalog loaded",
		zap.String("version", cat.Version),
		zap.Int("collections", len(cat.Collections)),
		zap.Int("keywords", len(cat.Keywords)),
		zap.Int("gazetteerEntries", len(cat.Gazetteer)),
	)

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisStore := cache.NewRedisStore(cfg.Cache.Redis, ttl)
		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return redisStore.Ping(pingCtx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis unreachable", zap.Error(err))
		}
		store = redisStore
	default:
		store = cache.NewMemoryStore(cfg.Cache.Capacity, ttl)
	}
	defer store.Close()

	locCfg := location.Config{
		FuzzyOverlap: cfg.Resolver.FuzzyOverlap,
		MinSpanDeg:   cfg.Resolver.MinSpanDeg,
		MaxSpanDeg:   cfg.Resolver.MaxSpanDeg,
	}
	strategies := location.BuildStrategies(cfg.Geocoding, cat, locCfg)
	zapLog.Info("location cascade assembled", zap.Int("strategies", len(strategies)))

	registry := collection.NewRegistry(cat)
	service := resolver.NewService(
		collection.NewMapper(cat, log),
		location.NewResolver(locCfg, strategies, store, log),
		temporal.NewResolver(registry, log),
		temporal.NewComparisonResolver(log),
		completeness.NewChecker(log),
		log,
	)

	e := api.NewRouter(api.NewQueryHandler(service, obs, log))

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
		if err := e.Start(cfg.Server.Addr()); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Resolver server stopped")
}
