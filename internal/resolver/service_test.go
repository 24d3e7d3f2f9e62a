package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquery-resolver/internal/common/cache"
	cerrors "geoquery-resolver/internal/common/errors"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/internal/resolver/completeness"
	"geoquery-resolver/internal/resolver/location"
	"geoquery-resolver/internal/resolver/temporal"
	"geoquery-resolver/pkg/catalog"
)

// newTestService assembles the full pipeline over the built-in catalog,
// gazetteer-only cascade, pinned clock.
func newTestService(t *testing.T) *Service {
	t.Helper()

	cat := catalog.Default()
	cat.Gazetteer = append(cat.Gazetteer,
		catalog.GazetteerEntry{Name: "miami beach", BBox: [4]float64{-80.15, 25.76, -80.11, 25.87}},
		catalog.GazetteerEntry{Name: "alps", Aliases: []string{"the alps"}, BBox: [4]float64{5.9, 44.0, 16.5, 47.9}},
	)
	log := logger.NewNoOpLogger()
	registry := collection.NewRegistry(cat)

	locCfg := location.DefaultConfig()
	strategies := []location.Strategy{location.NewGazetteerStrategy(cat, locCfg.FuzzyOverlap)}
	locResolver := location.NewResolver(locCfg, strategies, cache.NewMemoryStore(64, time.Hour), log)

	clock := func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	tempResolver := temporal.NewResolver(registry, log).WithClock(clock)
	compResolver := temporal.NewComparisonResolver(log).WithClock(clock)

	return NewService(
		collection.NewMapper(cat, log),
		locResolver,
		tempResolver,
		compResolver,
		completeness.NewChecker(log),
		log,
	)
}

func TestService_RecentImageryOfKnownPlace(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "Show me recent satellite imagery of Miami Beach",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Miami Beach", Type: "city", Confidence: 0.95},
			Temporal: models.TemporalEntity{Relative: "recent"},
			Intent:   models.IntentEntity{Type: "general_imagery"},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.QueryID)
	assert.Contains(t, result.Datasets, "sentinel-2-l2a")

	require.NotNil(t, result.Location)
	assert.Equal(t, models.StrategyStaticGazetteer, result.Location.Strategy)
	require.NotNil(t, result.BBox)
	assert.Less(t, result.BBox.West, result.BBox.East)

	assert.Equal(t, models.TemporalFilter("2024-05-16/2024-06-15"), result.Temporal)
	assert.Nil(t, result.Comparison)

	assert.False(t, result.Completeness.NeedsClarification)
}

func TestService_UnresolvableLocationDegradesToClarification(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "flooding",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Xyzzyville", Type: "city", Confidence: 0.4},
		},
	})
	require.NoError(t, err, "a missing location must degrade, not fail")

	assert.Nil(t, result.Location)
	assert.Nil(t, result.BBox)
	assert.True(t, result.Completeness.NeedsClarification)
	require.NotEmpty(t, result.Completeness.ClarificationQuestions)
	assert.Contains(t, result.Completeness.ClarificationQuestions[0], "location")
}

func TestService_ComparisonModeProducesWindowPair(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "Compare vegetation in the Sierra Nevada between 01/2020 and 01/2025",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Sierra Nevada", Type: "mountain_range", Confidence: 0.9},
			Intent:   models.IntentEntity{Type: "comparison"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Comparison)
	assert.Equal(t, models.TemporalFilter("2020-01-01/2020-01-31"), result.Comparison.Before)
	assert.Equal(t, models.TemporalFilter("2025-01-01/2025-01-31"), result.Comparison.After)
	assert.True(t, result.Temporal.IsNone())
	require.NotNil(t, result.Location)
}

func TestService_ComparisonCueWithoutIntentStillRoutes(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "wildfire extent 2019 versus 2021 in Northern California",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Northern California", Type: "region", Confidence: 0.9},
			Intent:   models.IntentEntity{Type: "general_imagery"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Comparison)
	assert.Equal(t, models.TemporalFilter("2019-01-01/2019-12-31"), result.Comparison.Before)
}

func TestService_ComparisonWithoutDatesFails(t *testing.T) {
	s := newTestService(t)

	_, err := s.Resolve(context.Background(), Request{
		QueryText:  "Show me before and after images of the flood",
		Comparison: true,
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Miami Beach", Type: "city", Confidence: 0.9},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrPartialFailure)
}

func TestService_StaticDatasetQueryGetsNoTemporalFilter(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "elevation model of the Alps from 2023",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Alps", Type: "mountain_range", Confidence: 0.9},
			Temporal: models.TemporalEntity{Year: "2023"},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Datasets)
	assert.Contains(t, result.Datasets[0], "dem")
	assert.True(t, result.Temporal.IsNone(), "terrain-only dataset sets suppress the date filter")
}

func TestService_TemporalIssuesSurfaceInReport(t *testing.T) {
	s := newTestService(t)

	result, err := s.Resolve(context.Background(), Request{
		QueryText: "satellite imagery of Miami Beach",
		Entities: models.ExtractedEntities{
			Location: models.LocationEntity{Name: "Miami Beach", Type: "city", Confidence: 0.9},
			Temporal: models.TemporalEntity{Year: "twenty twenty"},
		},
	})
	require.NoError(t, err)

	found := false
	for _, issue := range result.Completeness.Issues {
		if issue == `year "twenty twenty" could not be interpreted` {
			found = true
		}
	}
	assert.True(t, found, "temporal parse issues must ride along in the report")
}
