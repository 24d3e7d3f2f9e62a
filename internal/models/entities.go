// internal/models/entities.go
package models

// ExtractedEntities is the structured output of the external entity
// extractor, produced once per query. It is immutable input to the
// resolution pipeline; the pipeline never writes back into it.
type ExtractedEntities struct {
	Location LocationEntity `json:"location"`
	Temporal TemporalEntity `json:"temporal"`
	Topic    TopicEntity    `json:"topic"`
	Intent   IntentEntity   `json:"intent"`
}

type LocationEntity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"` // city, region, mountain_range, ...
	Confidence float64 `json:"confidence"`
}

// TemporalEntity carries free-text temporal fields as strings. Year and
// month arrive unvalidated from the extractor; the temporal resolver is the
// boundary that turns them into numbers or recovers from garbage.
type TemporalEntity struct {
	Year          string `json:"year,omitempty"`
	Month         string `json:"month,omitempty"`
	Season        string `json:"season,omitempty"`
	Relative      string `json:"relative,omitempty"`       // e.g. "recent"
	ExplicitRange string `json:"explicit_range,omitempty"` // "YYYY-MM-DD/YYYY-MM-DD"
}

func (t TemporalEntity) IsEmpty() bool {
	return t.Year == "" && t.Month == "" && t.Season == "" && t.Relative == "" && t.ExplicitRange == ""
}

type TopicEntity struct {
	Type       string  `json:"type,omitempty"` // wildfire, flood, hurricane, ...
	Name       string  `json:"name,omitempty"` // e.g. "Hurricane Ian"
	Confidence float64 `json:"confidence,omitempty"`
}

type IntentEntity struct {
	Type string `json:"type"` // general_imagery, damage_assessment, comparison, ...
}
