// pkg/catalog/schema.go
package catalog

// Catalog is the versioned configuration artifact behind the collection
// capability registry, the keyword mapper, and the curated gazetteer. It is
// loaded once at process start; nothing in it changes at request time.
type Catalog struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"lastUpdated"`
	Collections []Collection     `json:"collections"`
	Keywords    []Keyword        `json:"keywords"`
	Gazetteer   []GazetteerEntry `json:"gazetteer"`
}

// Collection declares a dataset and its capability class.
type Collection struct {
	ID    string `json:"id"`
	Class string `json:"class"` // optical | sar | terrain | composite
}

// Capability classes.
const (
	ClassOptical   = "optical"   // passive reflectance: temporal + cloud filter
	ClassSAR       = "sar"       // radar: temporal, no cloud filter
	ClassTerrain   = "terrain"   // static elevation models: no temporal axis
	ClassComposite = "composite" // pre-aggregated periodic products: recency-selected
)

// Keyword maps a free-text term to the datasets it suggests. Table order is
// the tie-break order of the mapper, so keep more specific terms first.
type Keyword struct {
	Term     string   `json:"term"`
	Datasets []string `json:"datasets"`
}

// GazetteerEntry is a curated named region with known-good coordinates,
// checked before any network geocoder. Entries exist specifically for names
// that generic providers snap to namesake institutions.
type GazetteerEntry struct {
	Name    string     `json:"name"`
	Aliases []string   `json:"aliases,omitempty"`
	BBox    [4]float64 `json:"bbox"` // [west, south, east, north]
}
