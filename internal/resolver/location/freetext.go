// internal/resolver/location/freetext.go
package location

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"geoquery-resolver/internal/common/config"
	chttp "geoquery-resolver/internal/common/http"
	"geoquery-resolver/internal/models"
)

// Query variations appended to bias the open gazetteer away from
// point-of-interest results.
var freeTextVariations = []string{
	"",
	" mountain range",
	" region",
	" geographical feature",
}

// Names containing these are businesses or institutions that happen to
// share a name with the place being asked about.
var excludedNameKeywords = []string{
	"college", "hospital", "prison", "airport", "school", "university",
	"clinic", "hotel", "restaurant", "stadium", "church", "cemetery",
	"mall", "casino", "brewery",
}

// Feature types that indicate a natural or administrative area rather than
// a point of interest.
var preferredFeatureTypes = map[string]bool{
	"mountain_range": true,
	"peak":           true,
	"natural":        true,
	"administrative": true,
	"state":          true,
	"county":         true,
	"region":         true,
	"valley":         true,
	"forest":         true,
	"desert":         true,
	"bay":            true,
	"island":         true,
	"coastline":      true,
	"park":           true,
	"protected_area": true,
}

// FreeTextStrategy is the last stop of the cascade: open-gazetteer search
// issued with query variations, candidates filtered by name and feature
// type, then size-checked before acceptance.
type FreeTextStrategy struct {
	cfg     config.ProviderConfig
	client  *chttp.Client
	minSpan float64
	maxSpan float64
}

func NewFreeTextStrategy(cfg config.ProviderConfig, minSpan, maxSpan float64) *FreeTextStrategy {
	return &FreeTextStrategy{
		cfg:     cfg,
		client:  chttp.NewClient(config.GetDuration(cfg.Timeout)),
		minSpan: minSpan,
		maxSpan: maxSpan,
	}
}

func (s *FreeTextStrategy) Name() models.ResolutionStrategy {
	return models.StrategyFreeText
}

type freeTextResult struct {
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east] as strings
	DisplayName string   `json:"display_name"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
}

func (s *FreeTextStrategy) Resolve(ctx context.Context, name, _ string) (models.BoundingBox, error) {
	var fallback *models.BoundingBox

	for _, variation := range freeTextVariations {
		query := name + variation

		endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=5",
			s.cfg.BaseURL, url.QueryEscape(query))

		var results []freeTextResult
		if err := fetchJSON(ctx, s.client, "open-gazetteer", endpoint, &results); err != nil {
			// A failed variation is not fatal; the next one may land.
			continue
		}

		for _, res := range results {
			if isExcludedName(res.DisplayName) {
				continue
			}

			bbox, ok := parseStringBBox(res.BoundingBox)
			if !ok || bbox.Validate(s.minSpan, s.maxSpan) != nil {
				continue
			}

			if preferredFeatureTypes[res.Type] || preferredFeatureTypes[res.Class] {
				return bbox, nil
			}
			if fallback == nil {
				b := bbox
				fallback = &b
			}
		}
	}

	// No preferred-type candidate anywhere; a plausible non-excluded box
	// still beats NotFound.
	if fallback != nil {
		return *fallback, nil
	}

	return models.BoundingBox{}, ErrNoMatch
}

func isExcludedName(displayName string) bool {
	lower := strings.ToLower(displayName)
	for _, kw := range excludedNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseStringBBox converts the open gazetteer's [south, north, west, east]
// string quadruple into a BoundingBox.
func parseStringBBox(raw []string) (models.BoundingBox, bool) {
	if len(raw) != 4 {
		return models.BoundingBox{}, false
	}
	vals := make([]float64, 4)
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.BoundingBox{}, false
		}
		vals[i] = v
	}
	return models.BoundingBox{
		South: vals[0],
		North: vals[1],
		West:  vals[2],
		East:  vals[3],
	}, true
}
