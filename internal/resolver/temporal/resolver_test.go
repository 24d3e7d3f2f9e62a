package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver/collection"
	"geoquery-resolver/pkg/catalog"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	registry := collection.NewRegistry(catalog.Default())
	r := NewResolver(registry, logger.NewNoOpLogger())
	// Pin the clock so month-without-year and "recent" are deterministic.
	return r.WithClock(func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	})
}

func TestResolve_YearAndMonth(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		temporal models.TemporalEntity
		want     models.TemporalFilter
	}{
		{
			name:     "year and month",
			temporal: models.TemporalEntity{Year: "2023", Month: "7"},
			want:     "2023-07-01/2023-07-31",
		},
		{
			name:     "february leap year",
			temporal: models.TemporalEntity{Year: "2024", Month: "2"},
			want:     "2024-02-01/2024-02-29",
		},
		{
			name:     "february non-leap year",
			temporal: models.TemporalEntity{Year: "2023", Month: "2"},
			want:     "2023-02-01/2023-02-28",
		},
		{
			name:     "december runs to the 31st",
			temporal: models.TemporalEntity{Year: "2022", Month: "12"},
			want:     "2022-12-01/2022-12-31",
		},
		{
			name:     "year only spans the calendar year",
			temporal: models.TemporalEntity{Year: "2021"},
			want:     "2021-01-01/2021-12-31",
		},
		{
			name:     "month only assumes the processing year",
			temporal: models.TemporalEntity{Month: "3"},
			want:     "2024-03-01/2024-03-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := r.Resolve(tt.temporal, []string{"sentinel-2-l2a"})
			assert.Equal(t, tt.want, got)
			assert.Empty(t, issues)
		})
	}
}

func TestResolve_ExplicitRangePassedThrough(t *testing.T) {
	r := newTestResolver(t)

	got, issues := r.Resolve(models.TemporalEntity{ExplicitRange: "2020-03-01/2020-09-30"}, nil)
	assert.Equal(t, models.TemporalFilter("2020-03-01/2020-09-30"), got)
	assert.Empty(t, issues)
}

func TestResolve_MalformedExplicitRangeFallsThrough(t *testing.T) {
	r := newTestResolver(t)

	// End before start: the range is discarded but year still applies.
	got, issues := r.Resolve(models.TemporalEntity{
		ExplicitRange: "2020-09-30/2020-03-01",
		Year:          "2020",
	}, nil)
	assert.Equal(t, models.TemporalFilter("2020-01-01/2020-12-31"), got)
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "could not be interpreted")
}

func TestResolve_Seasons(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		season string
		want   models.TemporalFilter
	}{
		{"summer", "2024-06-01/2024-08-31"},
		{"spring", "2024-03-01/2024-05-31"},
		{"fall", "2024-09-01/2024-11-30"},
		{"autumn", "2024-09-01/2024-11-30"},
		{"winter", "2023-12-01/2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.season, func(t *testing.T) {
			got, issues := r.Resolve(models.TemporalEntity{Season: tt.season}, nil)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, issues)
		})
	}
}

func TestResolve_RecentIsThirtyDayWindow(t *testing.T) {
	r := newTestResolver(t)

	got, issues := r.Resolve(models.TemporalEntity{Relative: "recent"}, []string{"sentinel-1-grd"})
	assert.Equal(t, models.TemporalFilter("2024-05-16/2024-06-15"), got)
	assert.Empty(t, issues)
}

func TestResolve_UnknownRelativeMeansNoFilter(t *testing.T) {
	r := newTestResolver(t)

	got, issues := r.Resolve(models.TemporalEntity{Relative: "a while back"}, nil)
	assert.True(t, got.IsNone())
	assert.Empty(t, issues)
}

func TestResolve_MalformedFieldsCollapseToNoFilter(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name       string
		temporal   models.TemporalEntity
		wantIssues int
	}{
		{"garbage year", models.TemporalEntity{Year: "twenty-three"}, 1},
		{"year out of range", models.TemporalEntity{Year: "1492"}, 1},
		{"month out of range", models.TemporalEntity{Month: "13"}, 1},
		{"both malformed", models.TemporalEntity{Year: "soon", Month: "0"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := r.Resolve(tt.temporal, nil)
			assert.True(t, got.IsNone())
			assert.Len(t, issues, tt.wantIssues)
		})
	}
}

func TestResolve_MalformedMonthKeepsValidYear(t *testing.T) {
	r := newTestResolver(t)

	got, issues := r.Resolve(models.TemporalEntity{Year: "2023", Month: "14"}, nil)
	assert.Equal(t, models.TemporalFilter("2023-01-01/2023-12-31"), got)
	assert.Len(t, issues, 1)
}

func TestResolve_StaticDatasetsSuppressFilter(t *testing.T) {
	r := newTestResolver(t)
	explicit := models.TemporalEntity{Year: "2023", Month: "7"}

	tests := []struct {
		name     string
		datasets []string
		wantNone bool
	}{
		{"terrain only", []string{"cop-dem-glo-30"}, true},
		{"terrain pair", []string{"cop-dem-glo-30", "nasadem"}, true},
		{"composite only", []string{"modis-13q1-061"}, true},
		{"mixed set keeps the filter", []string{"cop-dem-glo-30", "sentinel-2-l2a"}, false},
		{"empty dataset list keeps the filter", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := r.Resolve(explicit, tt.datasets)
			if tt.wantNone {
				assert.True(t, got.IsNone())
			} else {
				assert.Equal(t, models.TemporalFilter("2023-07-01/2023-07-31"), got)
			}
		})
	}
}

func TestResolve_NothingExtractedMeansNoFilter(t *testing.T) {
	r := newTestResolver(t)

	got, issues := r.Resolve(models.TemporalEntity{}, []string{"sentinel-2-l2a"})
	assert.True(t, got.IsNone())
	assert.Empty(t, issues)
}
