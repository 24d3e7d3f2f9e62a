// internal/resolver/collection/registry.go
package collection

import (
	"geoquery-resolver/internal/models"
	"geoquery-resolver/pkg/catalog"
)

// CapabilityRegistry classifies dataset identifiers into capability flags.
// Populated once from the catalog artifact at startup, read-only afterward,
// so it needs no locking.
type CapabilityRegistry struct {
	caps map[string]models.CollectionCapability
}

func NewRegistry(cat *catalog.Catalog) *CapabilityRegistry {
	caps := make(map[string]models.CollectionCapability, len(cat.Collections))
	for _, col := range cat.Collections {
		caps[col.ID] = classify(col)
	}
	return &CapabilityRegistry{caps: caps}
}

func classify(col catalog.Collection) models.CollectionCapability {
	cap := models.CollectionCapability{ID: col.ID}
	switch col.Class {
	case catalog.ClassTerrain:
		cap.IsStatic = true
	case catalog.ClassComposite:
		cap.IsComposite = true
	case catalog.ClassOptical:
		cap.SupportsCloudFilter = true
	}
	cap.SupportsTemporal = !cap.IsStatic && !cap.IsComposite
	return cap
}

// Capabilities looks up a dataset id. Unknown identifiers get the most
// permissive capability set (temporal-filterable, no cloud filter), so an
// unrecognized-but-valid dataset degrades to "ask for a date filter"
// instead of crashing the pipeline.
func (r *CapabilityRegistry) Capabilities(datasetID string) models.CollectionCapability {
	if cap, ok := r.caps[datasetID]; ok {
		return cap
	}
	return models.CollectionCapability{
		ID:               datasetID,
		SupportsTemporal: true,
	}
}

// AnySupportsTemporal reports whether at least one of the ids accepts a
// date-range filter. An empty set supports nothing.
func (r *CapabilityRegistry) AnySupportsTemporal(datasetIDs []string) bool {
	for _, id := range datasetIDs {
		if r.Capabilities(id).SupportsTemporal {
			return true
		}
	}
	return false
}
