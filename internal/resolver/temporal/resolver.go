// internal/resolver/temporal/resolver.go
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
	"geoquery-resolver/internal/resolver/collection"
)

var explicitRangePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})/(\d{4}-\d{2}-\d{2})$`)

// Resolver turns extracted temporal fields plus the selected datasets'
// capability flags into a catalog-ready interval or "no filter".
type Resolver struct {
	registry *collection.CapabilityRegistry
	logger   logger.Logger
	now      func() time.Time
}

func NewResolver(registry *collection.CapabilityRegistry, log logger.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"stage": "temporal-resolver"}),
		now:      time.Now,
	}
}

// WithClock overrides the processing instant (tests).
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve applies the decision order. Malformed numeric fields never
// propagate as errors: they collapse to "no filter" and come back as issue
// strings for the completeness checker.
func (r *Resolver) Resolve(temporal models.TemporalEntity, datasetIDs []string) (models.TemporalFilter, []string) {
	// A date filter on a set of purely static/composite datasets is a
	// protocol violation upstream (silently returns zero results), so it
	// is suppressed here no matter what the entities say.
	if len(datasetIDs) > 0 && !r.registry.AnySupportsTemporal(datasetIDs) {
		r.logger.Debug("suppressing temporal filter for static/composite dataset set", map[string]interface{}{
			"datasets": datasetIDs,
		})
		return models.NoTemporalFilter, nil
	}

	var issues []string

	if temporal.ExplicitRange != "" {
		if m := explicitRangePattern.FindStringSubmatch(temporal.ExplicitRange); m != nil {
			start, errS := time.Parse("2006-01-02", m[1])
			end, errE := time.Parse("2006-01-02", m[2])
			if errS == nil && errE == nil && !end.Before(start) {
				return models.TemporalFilter(temporal.ExplicitRange), nil
			}
		}
		issues = append(issues, fmt.Sprintf("explicit date range %q could not be interpreted", temporal.ExplicitRange))
	}

	year, yearOK, yearIssue := parseYear(temporal.Year)
	month, monthOK, monthIssue := parseMonth(temporal.Month)
	if yearIssue != "" {
		issues = append(issues, yearIssue)
	}
	if monthIssue != "" {
		issues = append(issues, monthIssue)
	}

	switch {
	case yearOK && monthOK:
		return MonthInterval(year, month), issues
	case yearOK:
		return YearInterval(year), issues
	case monthOK:
		// Month without a year means the current processing year.
		return MonthInterval(r.now().Year(), month), issues
	}

	if season, ok := seasonMonths(temporal.Season); ok {
		return seasonInterval(r.now().Year(), season), issues
	}

	if strings.EqualFold(temporal.Relative, "recent") {
		now := r.now()
		return Interval(now.AddDate(0, 0, -30), now), issues
	}

	// No temporal information: upstream interprets this as "most recent
	// available".
	return models.NoTemporalFilter, issues
}

func parseYear(raw string) (int, bool, string) {
	if raw == "" {
		return 0, false, ""
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < 1900 || year > 2200 {
		return 0, false, fmt.Sprintf("year %q could not be interpreted", raw)
	}
	return year, true, ""
}

func parseMonth(raw string) (time.Month, bool, string) {
	if raw == "" {
		return 0, false, ""
	}
	month, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || month < 1 || month > 12 {
		return 0, false, fmt.Sprintf("month %q could not be interpreted", raw)
	}
	return time.Month(month), true, ""
}

// MonthInterval spans the first through the last calendar day of a month,
// leap years included.
func MonthInterval(year int, month time.Month) models.TemporalFilter {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Interval(first, last)
}

// YearInterval spans January 1 through December 31.
func YearInterval(year int) models.TemporalFilter {
	return Interval(
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
}

// Interval renders a closed ISO-8601 date interval.
func Interval(start, end time.Time) models.TemporalFilter {
	return models.TemporalFilter(start.Format("2006-01-02") + "/" + end.Format("2006-01-02"))
}

type season struct {
	startMonth time.Month
	months     int
}

func seasonMonths(raw string) (season, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "spring":
		return season{time.March, 3}, true
	case "summer":
		return season{time.June, 3}, true
	case "fall", "autumn":
		return season{time.September, 3}, true
	case "winter":
		// December of the prior year through February.
		return season{time.December, 3}, true
	}
	return season{}, false
}

func seasonInterval(year int, s season) models.TemporalFilter {
	startYear := year
	if s.startMonth == time.December {
		startYear = year - 1
	}
	start := time.Date(startYear, s.startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, s.months, -1)
	return Interval(start, end)
}
