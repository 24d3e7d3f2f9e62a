// internal/resolver/completeness/checker.go
package completeness

import (
	"sort"
	"strings"
	"time"

	"geoquery-resolver/internal/common/logger"
	"geoquery-resolver/internal/models"
)

const (
	// Severity at or above this asks the user to clarify instead of
	// executing a mostly-blind query.
	ClarificationThreshold = 6

	maxQuestions    = 3
	maxDatasets     = 8
	maxSpanDeg      = 50
	maxIntervalDays = 365

	lowConfidence = 0.5
)

// Input gathers everything the checker scores. Location is nil when the
// resolver exhausted its cascade; Temporal is the single-window filter (the
// comparison path runs the checker once per window).
type Input struct {
	Entities  models.ExtractedEntities
	QueryText string
	Location  *models.ResolvedLocation
	Datasets  []string
	Temporal  models.TemporalFilter
}

// question carries the fixed ask priority: spatial > temporal > topic >
// dataset.
type question struct {
	priority int
	text     string
}

// Checker scores ambiguity per dimension and decides whether to ask a
// clarifying question. It never blocks execution: a query below the
// threshold is returned as-is even with nonzero sub-scores.
type Checker struct {
	logger logger.Logger
}

func NewChecker(log logger.Logger) *Checker {
	return &Checker{
		logger: log.WithFields(map[string]interface{}{"stage": "completeness-checker"}),
	}
}

func (c *Checker) Check(in Input) models.CompletenessReport {
	severity := 0
	issues := []string{}
	var questions []question

	severity += c.checkSpatial(in, &issues, &questions)
	severity += c.checkTemporal(in, &issues, &questions)
	severity += c.checkTopic(in, &issues, &questions)
	severity += c.checkDatasets(in, &issues, &questions)

	if severity > 10 {
		severity = 10
	}

	report := models.CompletenessReport{
		Severity:           severity,
		Issues:             issues,
		NeedsClarification: severity >= ClarificationThreshold,
	}
	if report.NeedsClarification {
		report.ClarificationQuestions = renderQuestions(questions)
	} else {
		report.ClarificationQuestions = []string{}
	}

	c.logger.Debug("completeness scored", map[string]interface{}{
		"severity":           report.Severity,
		"needsClarification": report.NeedsClarification,
	})

	return report
}

// Merge combines the per-window reports of a comparison query: worst
// severity wins, issues union, questions re-capped.
func Merge(a, b models.CompletenessReport) models.CompletenessReport {
	merged := models.CompletenessReport{
		Severity: a.Severity,
	}
	if b.Severity > merged.Severity {
		merged.Severity = b.Severity
	}

	merged.Issues = dedupe(append(append([]string{}, a.Issues...), b.Issues...))
	merged.NeedsClarification = a.NeedsClarification || b.NeedsClarification

	questions := dedupe(append(append([]string{}, a.ClarificationQuestions...), b.ClarificationQuestions...))
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	merged.ClarificationQuestions = questions

	return merged
}

func (c *Checker) checkSpatial(in Input, issues *[]string, questions *[]question) int {
	if in.Location == nil {
		*issues = append(*issues, "no location could be resolved")
		*questions = append(*questions, question{1, "Which location should I look at? A city, region, or landmark name works."})
		return 4
	}

	severity := 0
	if in.Entities.Location.Confidence > 0 && in.Entities.Location.Confidence < lowConfidence {
		*issues = append(*issues, "location was extracted with low confidence")
		*questions = append(*questions, question{1, "Did you mean " + in.Entities.Location.Name + "? Please confirm the location."})
		severity += 2
	}
	if in.Location.BBox.Width() > maxSpanDeg || in.Location.BBox.Height() > maxSpanDeg {
		*issues = append(*issues, "resolved area spans more than 50 degrees; results may be too coarse")
		*questions = append(*questions, question{1, "The area is very large. Can you narrow it to a state, county, or city?"})
		severity += 2
	}
	return severity
}

func (c *Checker) checkTemporal(in Input, issues *[]string, questions *[]question) int {
	severity := 0
	query := strings.ToLower(in.QueryText)

	if in.Temporal.IsNone() {
		allTime := strings.Contains(query, "all time") || strings.Contains(query, "any time") ||
			strings.Contains(query, "ever recorded")
		if !allTime {
			*issues = append(*issues, "no time range was specified")
			*questions = append(*questions, question{2, "What time period are you interested in? For example a month, a year, or \"recent\"."})
			severity += 3
		}
	}

	if in.Entities.Temporal.Relative != "" && !strings.EqualFold(in.Entities.Temporal.Relative, "recent") {
		*issues = append(*issues, "relative time expression \""+in.Entities.Temporal.Relative+"\" could not be expanded")
		*questions = append(*questions, question{2, "Can you replace \"" + in.Entities.Temporal.Relative + "\" with an explicit date or month?"})
		severity += 2
	}

	if days, ok := intervalDays(in.Temporal); ok && days > maxIntervalDays {
		*issues = append(*issues, "requested interval spans more than a year and may return too many results")
		severity++
	}

	return severity
}

func (c *Checker) checkTopic(in Input, issues *[]string, questions *[]question) int {
	severity := 0

	if in.Entities.Topic.Name != "" && in.Entities.Topic.Confidence > 0 && in.Entities.Topic.Confidence < lowConfidence {
		*issues = append(*issues, "event \""+in.Entities.Topic.Name+"\" was identified with low confidence")
		*questions = append(*questions, question{3, "Which event did you mean by \"" + in.Entities.Topic.Name + "\"?"})
		severity++
	}

	intent := strings.ToLower(in.Entities.Intent.Type)
	if (strings.Contains(intent, "damage") || strings.Contains(intent, "impact")) && in.Entities.Topic.Type == "" && in.Entities.Topic.Name == "" {
		*issues = append(*issues, "damage assessment requested without a named event or disaster type")
		*questions = append(*questions, question{3, "Which disaster or event should the damage assessment cover?"})
		severity += 2
	}

	return severity
}

func (c *Checker) checkDatasets(in Input, issues *[]string, questions *[]question) int {
	if len(in.Datasets) == 0 {
		*issues = append(*issues, "no dataset matched the query")
		*questions = append(*questions, question{4, "What kind of data do you need? For example optical imagery, radar, or elevation."})
		return 4
	}
	if len(in.Datasets) > maxDatasets {
		*issues = append(*issues, "query matched an unusually broad set of datasets")
		*questions = append(*questions, question{4, "The query matches many datasets. Is there a specific sensor or product you want?"})
		return 1
	}
	return 0
}

func renderQuestions(questions []question) []string {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].priority < questions[j].priority
	})

	rendered := dedupeQuestions(questions)
	if len(rendered) > maxQuestions {
		rendered = rendered[:maxQuestions]
	}
	return rendered
}

func dedupeQuestions(questions []question) []string {
	seen := make(map[string]bool, len(questions))
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if seen[q.text] {
			continue
		}
		seen[q.text] = true
		out = append(out, q.text)
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func intervalDays(f models.TemporalFilter) (int, bool) {
	if f.IsNone() {
		return 0, false
	}
	parts := strings.SplitN(string(f), "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	start, errS := time.Parse("2006-01-02", parts[0])
	end, errE := time.Parse("2006-01-02", parts[1])
	if errS != nil || errE != nil {
		return 0, false
	}
	return int(end.Sub(start).Hours() / 24), true
}
