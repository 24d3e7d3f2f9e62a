// internal/resolver/location/strategy.go
package location

import (
	"context"
	"errors"

	"geoquery-resolver/internal/models"
)

// ErrNoMatch is the in-cascade miss signal: the strategy ran fine but has
// no answer for this name. The resolver advances to the next strategy.
var ErrNoMatch = errors.New("no match")

// Strategy is one step of the resolution cascade. Network strategies carry
// their own HTTP timeout so a slow provider only delays its own step.
type Strategy interface {
	Name() models.ResolutionStrategy
	Resolve(ctx context.Context, name, kind string) (models.BoundingBox, error)
}

// Config carries the resolution constants. The defaults are empirically
// chosen; keep them adjustable for recalibration.
type Config struct {
	FuzzyOverlap float64 // gazetteer token-overlap threshold, default 0.75
	MinSpanDeg   float64 // default 0.001
	MaxSpanDeg   float64 // default 50
}

func DefaultConfig() Config {
	return Config{
		FuzzyOverlap: 0.75,
		MinSpanDeg:   0.001,
		MaxSpanDeg:   50,
	}
}

// strategyConfidence maps each cascade step to the confidence recorded on
// its results. Earlier steps are assumed more trustworthy; that ordering is
// the cost/accuracy tradeoff the cascade is built around.
var strategyConfidence = map[models.ResolutionStrategy]float64{
	models.StrategyStaticGazetteer: 0.95,
	models.StrategyEnterprise:      0.9,
	models.StrategyRegional:        0.85,
	models.StrategyGeneral:         0.8,
	models.StrategyFreeText:        0.7,
}
