// internal/resolver/location/gazetteer.go
package location

import (
	"context"
	"strings"

	"geoquery-resolver/internal/models"
	"geoquery-resolver/pkg/catalog"
)

// GazetteerStrategy matches against the curated table of named regions
// whose coordinates generic providers are known to get wrong (a mountain
// range name colliding with a hospital named after it). It runs first in
// the cascade precisely because it exists to preempt those failure modes.
type GazetteerStrategy struct {
	entries      []catalog.GazetteerEntry
	fuzzyOverlap float64
}

func NewGazetteerStrategy(cat *catalog.Catalog, fuzzyOverlap float64) *GazetteerStrategy {
	return &GazetteerStrategy{
		entries:      cat.Gazetteer,
		fuzzyOverlap: fuzzyOverlap,
	}
}

func (g *GazetteerStrategy) Name() models.ResolutionStrategy {
	return models.StrategyStaticGazetteer
}

func (g *GazetteerStrategy) Resolve(_ context.Context, name, _ string) (models.BoundingBox, error) {
	normalized := normalize(name)
	if normalized == "" {
		return models.BoundingBox{}, ErrNoMatch
	}

	// Exact pass over names and aliases first.
	for _, entry := range g.entries {
		if normalized == normalize(entry.Name) {
			return toBBox(entry.BBox), nil
		}
		for _, alias := range entry.Aliases {
			if normalized == normalize(alias) {
				return toBBox(entry.BBox), nil
			}
		}
	}

	// Fuzzy pass: token overlap against the entry name.
	queryTokens := tokenize(normalized)
	if len(queryTokens) == 0 {
		return models.BoundingBox{}, ErrNoMatch
	}

	best := -1
	bestScore := 0.0
	for i, entry := range g.entries {
		score := tokenOverlap(queryTokens, tokenize(normalize(entry.Name)))
		if score >= g.fuzzyOverlap && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 {
		return toBBox(g.entries[best].BBox), nil
	}

	return models.BoundingBox{}, ErrNoMatch
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

// tokenOverlap is the shared-token fraction relative to the larger token
// set, so neither a long query nor a long entry name inflates the score.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	shared := 0
	for _, t := range b {
		if set[t] {
			shared++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(shared) / float64(denom)
}

func toBBox(arr [4]float64) models.BoundingBox {
	return models.BoundingBox{West: arr[0], South: arr[1], East: arr[2], North: arr[3]}
}
