// internal/resolver/temporal/comparison.go
package temporal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	cerrors "geoquery-resolver/internal/common/errors"
	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
)

// Comparative connectives, tried in order. The lazy left group keeps
// "between January 2023 and January 2024" from swallowing the whole tail.
var connectivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`between\s+(.+?)\s+and\s+(.+)`),
	regexp.MustCompile(`from\s+(.+?)\s+to\s+(.+)`),
	regexp.MustCompile(`(.+?)\s+(?:versus|vs\.?)\s+(.+)`),
	regexp.MustCompile(`(.+?)\s+compared\s+(?:with|to)\s+(.+)`),
}

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashPattern     = regexp.MustCompile(`\b(0?[1-9]|1[0-2])/((?:19|20)\d{2})\b`)
	monthNamePattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+((?:19|20)\d{2})\b`)
	earlyLatePattern = regexp.MustCompile(`\b(early|late)\s+((?:19|20)\d{2})\b`)
	bareYearPattern  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ComparisonResolver extracts the two time windows of a before/after
// comparison from a single free-text query.
type ComparisonResolver struct {
	logger logger.Logger
	now    func() time.Time
}

func NewComparisonResolver(log logger.Logger) *ComparisonResolver {
	return &ComparisonResolver{
		logger: log.WithFields(map[string]interface{}{"stage": "comparison-resolver"}),
		now:    time.Now,
	}
}

// WithClock overrides the processing instant (tests).
func (c *ComparisonResolver) WithClock(now func() time.Time) *ComparisonResolver {
	c.now = now
	return c
}

// HasComparisonCue reports whether the query text carries a comparative
// connective, so the pipeline can route to comparison mode even when the
// extractor missed the intent.
func HasComparisonCue(queryText string) bool {
	q := strings.ToLower(queryText)
	if !strings.Contains(q, "compar") && !strings.Contains(q, "versus") &&
		!strings.Contains(q, " vs") && !strings.Contains(q, "before") && !strings.Contains(q, "after") {
		return false
	}
	return true
}

// Resolve parses both sides of the comparison. One parsed side is a typed
// partial failure carrying the parsed interval; no parsed side at all fails
// immediately. Comparison mode never defaults to an unrequested window,
// because an invented baseline invalidates the analysis the user asked for.
func (c *ComparisonResolver) Resolve(queryText string) (*models.ComparisonWindowPair, error) {
	query := strings.ToLower(queryText)

	var before, after models.TemporalFilter
	var beforeOK, afterOK bool

	for _, pat := range connectivePatterns {
		m := pat.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		before, beforeOK = parseDateExpression(m[1], c.now())
		after, afterOK = parseDateExpression(m[2], c.now())
		if beforeOK || afterOK {
			break
		}
	}

	// No connective produced a date: fall back to scanning the whole text
	// for two date tokens in order of appearance.
	if !beforeOK && !afterOK {
		windows := scanDateExpressions(query, c.now())
		switch len(windows) {
		case 0:
			return nil, cerrors.NewComparisonNoDatesError()
		case 1:
			before, beforeOK = windows[0], true
		default:
			before, beforeOK = windows[0], true
			after, afterOK = windows[1], true
		}
	}

	if beforeOK != afterOK {
		parsedSide, missingSide := "before", "after"
		parsed := before
		if afterOK {
			parsedSide, missingSide = "after", "before"
			parsed = after
		}
		return nil, cerrors.NewComparisonPartialError(parsedSide, string(parsed), missingSide)
	}

	// Keep the pair ordered: before strictly precedes after.
	if intervalStart(before).After(intervalStart(after)) {
		before, after = after, before
	}
	if !intervalStart(before).Before(intervalStart(after)) {
		return nil, cerrors.NewComparisonNoDatesError()
	}

	pair := &models.ComparisonWindowPair{
		Before:      before,
		After:       after,
		Explanation: fmt.Sprintf("comparing %s against %s", before, after),
	}

	c.logger.Debug("resolved comparison windows", map[string]interface{}{
		"before": string(before),
		"after":  string(after),
	})

	return pair, nil
}

// parseDateExpression normalizes one side of a comparison into a closed
// interval, using the same month/year expansion rules as the single-window
// resolver.
func parseDateExpression(side string, now time.Time) (models.TemporalFilter, bool) {
	side = strings.TrimSpace(side)

	if m := isoDatePattern.FindStringSubmatch(side); m != nil {
		day, err := time.Parse("2006-01-02", m[0])
		if err == nil {
			return Interval(day, day), true
		}
	}

	if m := slashPattern.FindStringSubmatch(side); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return MonthInterval(year, time.Month(month)), true
	}

	if m := monthNamePattern.FindStringSubmatch(side); m != nil {
		month := monthNames[strings.TrimSuffix(m[1], ".")]
		year, _ := strconv.Atoi(m[2])
		return MonthInterval(year, month), true
	}

	if m := earlyLatePattern.FindStringSubmatch(side); m != nil {
		year, _ := strconv.Atoi(m[2])
		if m[1] == "early" {
			return MonthInterval(year, time.January), true
		}
		return MonthInterval(year, time.December), true
	}

	if strings.Contains(side, "last year") {
		return YearInterval(now.Year() - 1), true
	}
	if strings.Contains(side, "this year") {
		return YearInterval(now.Year()), true
	}

	if m := bareYearPattern.FindStringSubmatch(side); m != nil {
		year, _ := strconv.Atoi(m[1])
		return YearInterval(year), true
	}

	return models.NoTemporalFilter, false
}

// scanDateExpressions returns every date expression in the text, left to
// right, each normalized to an interval.
func scanDateExpressions(text string, now time.Time) []models.TemporalFilter {
	type hit struct {
		pos    int
		window models.TemporalFilter
	}
	var hits []hit

	consumed := make([]bool, len(text))
	mark := func(start, end int) {
		for i := start; i < end && i < len(consumed); i++ {
			consumed[i] = true
		}
	}
	free := func(start, end int) bool {
		for i := start; i < end && i < len(consumed); i++ {
			if consumed[i] {
				return false
			}
		}
		return true
	}

	for _, loc := range isoDatePattern.FindAllStringIndex(text, -1) {
		if day, err := time.Parse("2006-01-02", text[loc[0]:loc[1]]); err == nil {
			hits = append(hits, hit{loc[0], Interval(day, day)})
			mark(loc[0], loc[1])
		}
	}
	for _, loc := range slashPattern.FindAllStringIndex(text, -1) {
		if !free(loc[0], loc[1]) {
			continue
		}
		if w, ok := parseDateExpression(text[loc[0]:loc[1]], now); ok {
			hits = append(hits, hit{loc[0], w})
			mark(loc[0], loc[1])
		}
	}
	for _, loc := range monthNamePattern.FindAllStringIndex(text, -1) {
		if !free(loc[0], loc[1]) {
			continue
		}
		if w, ok := parseDateExpression(text[loc[0]:loc[1]], now); ok {
			hits = append(hits, hit{loc[0], w})
			mark(loc[0], loc[1])
		}
	}
	for _, loc := range earlyLatePattern.FindAllStringIndex(text, -1) {
		if !free(loc[0], loc[1]) {
			continue
		}
		if w, ok := parseDateExpression(text[loc[0]:loc[1]], now); ok {
			hits = append(hits, hit{loc[0], w})
			mark(loc[0], loc[1])
		}
	}
	for _, loc := range bareYearPattern.FindAllStringIndex(text, -1) {
		if !free(loc[0], loc[1]) {
			continue
		}
		year, _ := strconv.Atoi(text[loc[0]:loc[1]])
		hits = append(hits, hit{loc[0], YearInterval(year)})
		mark(loc[0], loc[1])
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	windows := make([]models.TemporalFilter, 0, len(hits))
	for _, h := range hits {
		windows = append(windows, h.window)
	}
	return windows
}

func intervalStart(f models.TemporalFilter) time.Time {
	parts := strings.SplitN(string(f), "/", 2)
	t, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return time.Time{}
	}
	return t
}
