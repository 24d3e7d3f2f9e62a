// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquery-resolver/internal/api"
	"geoquery-resolver/internal/common/cache"
	"geoquery-resolver/internal/common/config"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/internal/resolver/completeness"
	"geoquery-resolver/internal/resolver/location"
	"geoquery-resolver/internal/resolver/temporal"
	"geoquery-resolver/pkg/catalog"
)

// fakeGeocoders stands in for the external providers: an enterprise
// endpoint that knows a handful of cities and an open free-text endpoint
// with realistic point-of-interest noise.
type fakeGeocoders struct {
	enterprise *httptest.Server
	freeText   *httptest.Server
}

func newFakeGeocoders(t *testing.T) *fakeGeocoders {
	t.Helper()

	known := map[string][4]float64{ // [w, s, e, n]
		"miami beach": {-80.15, 25.76, -80.11, 25.87},
		"houston":     {-95.79, 29.52, -95.01, 30.11},
	}

	enterprise := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(r.URL.Query().Get("address"))
		box, ok := known[name]
		if !ok {
			fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
			return
		}
		fmt.Fprintf(w, `{"status": "OK", "results": [{"geometry": {"viewport": {
			"southwest": {"lat": %f, "lng": %f},
			"northeast": {"lat": %f, "lng": %f}
		}}}]}`, box[1], box[0], box[3], box[2])
	}))
	t.Cleanup(enterprise.Close)

	freeText := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		if strings.Contains(q, "atlas") {
			fmt.Fprint(w, `[
				{"boundingbox": ["31.0", "31.1", "-7.95", "-7.85"],
				 "display_name": "Atlas Film Studios Hotel, Ouarzazate",
				 "class": "tourism", "type": "hotel"},
				{"boundingbox": ["30.1", "35.1", "-9.8", "-1.0"],
				 "display_name": "Atlas Mountains",
				 "class": "natural", "type": "mountain_range"}
			]`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(freeText.Close)

	return &fakeGeocoders{enterprise: enterprise, freeText: freeText}
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	fakes := newFakeGeocoders(t)
	cat := catalog.Default()
	log := logger.NewNoOpLogger()

	geo := config.GeocodingConfig{
		Enterprise: config.ProviderConfig{Enabled: true, BaseURL: fakes.enterprise.URL, APIKey: "test", Timeout: 2000},
		Gazetteer:  config.ProviderConfig{Enabled: true, BaseURL: fakes.freeText.URL, Timeout: 2000},
	}

	locCfg := location.DefaultConfig()
	strategies := location.BuildStrategies(geo, cat, locCfg)
	registry := collection.NewRegistry(cat)

	clock := func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}

	service := resolver.NewService(
		collection.NewMapper(cat, log),
		location.NewResolver(locCfg, strategies, cache.NewMemoryStore(64, time.Hour), log),
		temporal.NewResolver(registry, log).WithClock(clock),
		temporal.NewComparisonResolver(log).WithClock(clock),
		completeness.NewChecker(log),
		log,
	)
	return api.NewRouter(api.NewQueryHandler(service, nil, log))
}

func resolve(t *testing.T, e *echo.Echo, body string) (*httptest.ResponseRecorder, models.ResolvedQuery) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/queries/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var result models.ResolvedQuery
	if rec.Code == http.StatusOK || rec.Code == http.StatusUnprocessableEntity {
		_ = json.Unmarshal(rec.Body.Bytes(), &result)
	}
	return rec, result
}

func TestE2E_RecentImageryThroughEnterpriseGeocoder(t *testing.T) {
	e := newServer(t)

	rec, result := resolve(t, e, `{
		"query": "Show me recent satellite imagery of Miami Beach",
		"entities": {
			"location": {"name": "Miami Beach", "type": "city", "confidence": 0.95},
			"temporal": {"relative": "recent"},
			"intent": {"type": "general_imagery"}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, result.Datasets, "sentinel-2-l2a")
	require.NotNil(t, result.Location)
	assert.Equal(t, models.StrategyEnterprise, result.Location.Strategy)
	assert.Equal(t, models.TemporalFilter("2024-05-16/2024-06-15"), result.Temporal)
	assert.False(t, result.Completeness.NeedsClarification)
}

func TestE2E_CuratedGazetteerBeatsNetworkProviders(t *testing.T) {
	e := newServer(t)

	rec, result := resolve(t, e, `{
		"query": "vegetation trends in the Sierra Nevada for 2023",
		"entities": {
			"location": {"name": "Sierra Nevada", "type": "mountain_range", "confidence": 0.9},
			"temporal": {"year": "2023"}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, result.Location)
	assert.Equal(t, models.StrategyStaticGazetteer, result.Location.Strategy)
	assert.Equal(t, models.TemporalFilter("2023-01-01/2023-12-31"), result.Temporal)
}

func TestE2E_FreeTextFallbackSkipsNamesakeBusinesses(t *testing.T) {
	e := newServer(t)

	rec, result := resolve(t, e, `{
		"query": "snow cover in the Atlas mountains January 2024",
		"entities": {
			"location": {"name": "Atlas", "type": "mountain_range", "confidence": 0.8},
			"temporal": {"year": "2024", "month": "1"}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, result.Location)
	assert.Equal(t, models.StrategyFreeText, result.Location.Strategy)
	require.NotNil(t, result.BBox)
	assert.InDelta(t, -9.8, result.BBox.West, 0.01, "the hotel namesake must not win")
}

func TestE2E_UnknownPlaceDegradesToClarification(t *testing.T) {
	e := newServer(t)

	rec, result := resolve(t, e, `{
		"query": "flooding",
		"entities": {
			"location": {"name": "Atlantis", "type": "city", "confidence": 0.4}
		}
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, result.Completeness.NeedsClarification)
	require.NotEmpty(t, result.Completeness.ClarificationQuestions)
	assert.Contains(t, result.Completeness.ClarificationQuestions[0], "location")
}

func TestE2E_ComparisonQuery(t *testing.T) {
	e := newServer(t)

	rec, result := resolve(t, e, `{
		"query": "Compare flooding in Houston between August 2017 and September 2019",
		"entities": {
			"location": {"name": "Houston", "type": "city", "confidence": 0.95},
			"intent": {"type": "comparison"}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, result.Comparison)
	assert.Equal(t, models.TemporalFilter("2017-08-01/2017-08-31"), result.Comparison.Before)
	assert.Equal(t, models.TemporalFilter("2019-09-01/2019-09-30"), result.Comparison.After)
	assert.Contains(t, result.Datasets, "sentinel-1-grd")
}

func TestE2E_MetricsEndpointServes(t *testing.T) {
	e := newServer(t)

	// Vectors only show up in the scrape once a labeled child exists.
	resolve(t, e, `{"query": "recent imagery of Miami Beach", "entities": {"location": {"name": "Miami Beach", "type": "city", "confidence": 0.9}, "temporal": {"relative": "recent"}}}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resolver_queries_total")
}
