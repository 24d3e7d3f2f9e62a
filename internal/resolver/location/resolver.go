// internal/resolver/location/resolver.go
package location

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/sync/singleflight"

	"geoquery-resolver/internal/common/cache"
	"geoquery-resolver/internal/common/config"
	cerrors "geoquery-resolver/internal/common/errors"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/common/metrics"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/pkg/catalog"
)

// Resolver cascades through ordered strategies until one yields a valid
// bounding box. The cascade is a short-circuiting chain, not a race: each
// step is assumed more trustworthy than the next, and the cost of a later
// step is only paid when the earlier ones miss.
type Resolver struct {
	cfg        Config
	strategies []Strategy
	store      cache.Store
	group      singleflight.Group
	logger     logger.Logger
}

func NewResolver(cfg Config, strategies []Strategy, store cache.Store, log logger.Logger) *Resolver {
	return &Resolver{
		cfg:        cfg,
		strategies: strategies,
		store:      store,
		logger:     log.WithFields(map[string]interface{}{"stage": "location-resolver"}),
	}
}

// BuildStrategies assembles the cascade in its fixed order from provider
// config. Disabled providers are skipped; the static gazetteer is always
// present.
func BuildStrategies(geo config.GeocodingConfig, cat *catalog.Catalog, cfg Config) []Strategy {
	strategies := []Strategy{
		NewGazetteerStrategy(cat, cfg.FuzzyOverlap),
	}
	if geo.Enterprise.Enabled {
		strategies = append(strategies, NewEnterpriseStrategy(geo.Enterprise))
	}
	if geo.Regional.Enabled {
		strategies = append(strategies, NewRegionalStrategy(geo.Regional))
	}
	if geo.General.Enabled {
		strategies = append(strategies, NewGeneralStrategy(geo.General))
	}
	if geo.Gazetteer.Enabled {
		strategies = append(strategies, NewFreeTextStrategy(geo.Gazetteer, cfg.MinSpanDeg, cfg.MaxSpanDeg))
	}
	return strategies
}

// Resolve turns a place name into a bounding box, first valid strategy
// wins. On total miss it returns the typed not-found error; callers may
// not substitute a default coordinate, because a silently wrong location
// produces confidently wrong answers downstream.
func (r *Resolver) Resolve(ctx context.Context, name, kind string) (*models.ResolvedLocation, error) {
	if normalize(name) == "" {
		return nil, cerrors.NewLocationNotFoundError(name)
	}

	key := cache.Key(name, kind)

	if loc := r.cacheGet(ctx, key); loc != nil {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return loc, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	// Concurrent misses for the same key coalesce into one cascade run.
	val, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.runCascade(ctx, key, name, kind)
	})
	if err != nil {
		return nil, err
	}
	return val.(*models.ResolvedLocation), nil
}

func (r *Resolver) runCascade(ctx context.Context, key, name, kind string) (*models.ResolvedLocation, error) {
	for _, strategy := range r.strategies {
		bbox, err := strategy.Resolve(ctx, name, kind)
		if err != nil {
			outcome := "miss"
			if !errors.Is(err, ErrNoMatch) {
				outcome = "error"
				r.logger.Warn("strategy failed, advancing cascade", map[string]interface{}{
					"strategy": string(strategy.Name()),
					"location": name,
					"error":    err.Error(),
				})
			}
			metrics.StrategyAttempts.WithLabelValues(string(strategy.Name()), outcome).Inc()
			continue
		}

		// A syntactically valid but implausible box is geocoding noise:
		// treat it as a miss and keep going.
		if verr := bbox.Validate(r.cfg.MinSpanDeg, r.cfg.MaxSpanDeg); verr != nil {
			metrics.StrategyAttempts.WithLabelValues(string(strategy.Name()), "implausible").Inc()
			r.logger.Debug("discarding implausible bounding box", map[string]interface{}{
				"strategy": string(strategy.Name()),
				"location": name,
				"reason":   verr.Error(),
			})
			continue
		}

		metrics.StrategyAttempts.WithLabelValues(string(strategy.Name()), "hit").Inc()

		loc := &models.ResolvedLocation{
			BBox:       bbox,
			Strategy:   strategy.Name(),
			Confidence: strategyConfidence[strategy.Name()],
		}
		r.cacheSet(ctx, key, loc)

		r.logger.Info("location resolved", map[string]interface{}{
			"location": name,
			"strategy": string(strategy.Name()),
		})

		return loc, nil
	}

	r.logger.Warn("all strategies exhausted", map[string]interface{}{
		"location": name,
		"kind":     kind,
	})

	return nil, cerrors.NewLocationNotFoundError(name)
}

func (r *Resolver) cacheGet(ctx context.Context, key string) *models.ResolvedLocation {
	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		// Cache loss is a latency problem, never a correctness one.
		r.logger.Warn("cache read failed, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}
	if !ok {
		return nil
	}

	var loc models.ResolvedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil
	}
	return &loc
}

func (r *Resolver) cacheSet(ctx context.Context, key string, loc *models.ResolvedLocation) {
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		r.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
