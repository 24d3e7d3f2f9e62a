package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquery-resolver/internal/common/cache"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/internal/resolver/completeness"
	"geoquery-resolver/internal/resolver/location"
	"geoquery-resolver/internal/resolver/temporal"
	"geoquery-resolver/pkg/catalog"
)

func newTestHandler(t *testing.T) *QueryHandler {
	t.Helper()

	cat := catalog.Default()
	cat.Gazetteer = append(cat.Gazetteer,
		catalog.GazetteerEntry{Name: "miami beach", BBox: [4]float64{-80.15, 25.76, -80.11, 25.87}},
	)

	log := logger.NewNoOpLogger()
	registry := collection.NewRegistry(cat)
	locCfg := location.DefaultConfig()
	strategies := []location.Strategy{location.NewGazetteerStrategy(cat, locCfg.FuzzyOverlap)}

	clock := func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}

	svc := resolver.NewService(
		collection.NewMapper(cat, log),
		location.NewResolver(locCfg, strategies, cache.NewMemoryStore(64, time.Hour), log),
		temporal.NewResolver(registry, log).WithClock(clock),
		temporal.NewComparisonResolver(log).WithClock(clock),
		completeness.NewChecker(log),
		log,
	)
	return NewQueryHandler(svc, nil, log)
}

func doResolve(t *testing.T, handler *QueryHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewRouter(handler)
	req := httptest.NewRequest(http.MethodPost, "/v1/queries/resolve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResolveEndpoint_Success(t *testing.T) {
	h := newTestHandler(t)

	rec := doResolve(t, h, `{
		"query": "Show me recent satellite imagery of Miami Beach",
		"entities": {
			"location": {"name": "Miami Beach", "type": "city", "confidence": 0.95},
			"temporal": {"relative": "recent"},
			"intent": {"type": "general_imagery"}
		}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.ResolvedQuery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.QueryID)
	assert.Contains(t, result.Datasets, "sentinel-2-l2a")
	require.NotNil(t, result.BBox)
	assert.Equal(t, models.TemporalFilter("2024-05-16/2024-06-15"), result.Temporal)
	assert.False(t, result.Completeness.NeedsClarification)
}

func TestResolveEndpoint_ClarificationIs422WithReport(t *testing.T) {
	h := newTestHandler(t)

	rec := doResolve(t, h, `{
		"query": "show me something interesting"
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var result models.ResolvedQuery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Completeness.NeedsClarification)
	assert.NotEmpty(t, result.Completeness.ClarificationQuestions)
	assert.LessOrEqual(t, len(result.Completeness.ClarificationQuestions), 3)
}

func TestResolveEndpoint_ComparisonWithoutDatesIs422(t *testing.T) {
	h := newTestHandler(t)

	rec := doResolve(t, h, `{
		"query": "Show me before and after images of the flood in Miami Beach",
		"comparison": true,
		"entities": {
			"location": {"name": "Miami Beach", "type": "city", "confidence": 0.9}
		}
	}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "COMPARISON_NO_DATES", resp.Code)
}

func TestResolveEndpoint_MissingQueryIs400(t *testing.T) {
	h := newTestHandler(t)

	rec := doResolve(t, h, `{"entities": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveEndpoint_SchemaViolationIs400(t *testing.T) {
	h := newTestHandler(t)

	rec := doResolve(t, h, `{
		"query": "imagery of Miami Beach",
		"entities": {
			"location": {"name": "Miami Beach", "confidence": 7},
			"bogus": true
		}
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ENTITIES", resp.Code)
}

func TestHealthzEndpoint(t *testing.T) {
	h := newTestHandler(t)
	e := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
