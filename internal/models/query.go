// internal/models/query.go
package models

import (
	"encoding/json"
	"fmt"
)

// BoundingBox is an axis-aligned rectangle in longitude/latitude degrees.
// It marshals as the ordered 4-tuple [west, south, east, north] expected by
// catalog APIs.
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.West, b.South, b.East, b.North})
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	b.West, b.South, b.East, b.North = arr[0], arr[1], arr[2], arr[3]
	return nil
}

func (b BoundingBox) Width() float64 {
	return b.East - b.West
}

func (b BoundingBox) Height() float64 {
	return b.North - b.South
}

// Validate applies the size sanity check that filters geocoding noise:
// ordered edges, coordinates in range, and both axis spans between minSpan
// and maxSpan degrees (rejects building-scale and hemisphere-scale hits).
func (b BoundingBox) Validate(minSpan, maxSpan float64) error {
	if b.West >= b.East {
		return fmt.Errorf("west (%f) must be below east (%f)", b.West, b.East)
	}
	if b.South >= b.North {
		return fmt.Errorf("south (%f) must be below north (%f)", b.South, b.North)
	}
	if b.West < -180 || b.East > 180 {
		return fmt.Errorf("longitude out of range: [%f, %f]", b.West, b.East)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("latitude out of range: [%f, %f]", b.South, b.North)
	}
	if w := b.Width(); w < minSpan || w > maxSpan {
		return fmt.Errorf("longitude span %f outside [%f, %f]", w, minSpan, maxSpan)
	}
	if h := b.Height(); h < minSpan || h > maxSpan {
		return fmt.Errorf("latitude span %f outside [%f, %f]", h, minSpan, maxSpan)
	}
	return nil
}

// ResolutionStrategy names the cascade step that produced a location.
type ResolutionStrategy string

const (
	StrategyStaticGazetteer ResolutionStrategy = "static_gazetteer"
	StrategyEnterprise      ResolutionStrategy = "enterprise_geocoder"
	StrategyRegional        ResolutionStrategy = "regional_geocoder"
	StrategyGeneral         ResolutionStrategy = "general_geocoder"
	StrategyFreeText        ResolutionStrategy = "free_text_search"
)

// ResolvedLocation is the cache value for a resolved place name.
type ResolvedLocation struct {
	BBox       BoundingBox        `json:"bbox"`
	Strategy   ResolutionStrategy `json:"strategy"`
	Confidence float64            `json:"confidence"`
}

// CollectionCapability classifies a dataset's temporal semantics. Derived
// once from the catalog artifact and never mutated at runtime.
type CollectionCapability struct {
	ID                  string `json:"id"`
	IsStatic            bool   `json:"isStatic"`
	IsComposite         bool   `json:"isComposite"`
	SupportsTemporal    bool   `json:"supportsTemporal"`
	SupportsCloudFilter bool   `json:"supportsCloudFilter"`
}

// TemporalFilter is either empty (no filter, most-recent/any-time
// semantics) or a closed ISO-8601 interval "YYYY-MM-DD/YYYY-MM-DD".
type TemporalFilter string

const NoTemporalFilter TemporalFilter = ""

func (f TemporalFilter) IsNone() bool {
	return f == NoTemporalFilter
}

// ComparisonWindowPair holds the two windows of a before/after comparison.
// Both sides are always populated; a comparison with an unresolved side is
// an error, never a partial pair.
type ComparisonWindowPair struct {
	Before      TemporalFilter `json:"before"`
	After       TemporalFilter `json:"after"`
	Explanation string         `json:"explanation"`
}

// CompletenessReport scores how much information is missing or
// low-confidence in a resolved query. Derived fresh per query.
type CompletenessReport struct {
	Severity               int      `json:"severity"` // 0 = perfect, 10 = unusable
	Issues                 []string `json:"issues"`
	NeedsClarification     bool     `json:"needsClarification"`
	ClarificationQuestions []string `json:"clarificationQuestions"` // at most 3, priority-ordered
}

// ResolvedQuery is the pipeline's final output, consumed by the catalog
// search executor. Exactly one of Temporal or Comparison is meaningful:
// comparison-mode queries carry a window pair instead of a single filter.
type ResolvedQuery struct {
	QueryID      string                `json:"queryId"`
	Datasets     []string              `json:"datasets"`
	BBox         *BoundingBox          `json:"bbox,omitempty"`
	Location     *ResolvedLocation     `json:"location,omitempty"`
	Temporal     TemporalFilter        `json:"temporal,omitempty"`
	Comparison   *ComparisonWindowPair `json:"comparison,omitempty"`
	Completeness CompletenessReport    `json:"completeness"`
}
