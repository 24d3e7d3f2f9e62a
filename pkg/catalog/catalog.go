// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a catalog artifact from disk. A missing file is not an error:
// the built-in Default tables apply, so the binary runs without any
// external artifact.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if len(cat.Collections) == 0 {
		return nil, fmt.Errorf("catalog %s declares no collections", path)
	}

	return &cat, nil
}

// Default returns the built-in catalog tables.
func Default() *Catalog {
	return &Catalog{
		Version:     "builtin",
		LastUpdated: "2026-08-01",
		Collections: []Collection{
			{ID: "sentinel-2-l2a", Class: ClassOptical},
			{ID: "landsat-c2-l2", Class: ClassOptical},
			{ID: "hls2-s30", Class: ClassOptical},
			{ID: "naip", Class: ClassOptical},
			{ID: "sentinel-1-grd", Class: ClassSAR},
			{ID: "sentinel-1-rtc", Class: ClassSAR},
			{ID: "cop-dem-glo-30", Class: ClassTerrain},
			{ID: "cop-dem-glo-90", Class: ClassTerrain},
			{ID: "nasadem", Class: ClassTerrain},
			{ID: "modis-13q1-061", Class: ClassComposite},
			{ID: "modis-64a1-061", Class: ClassComposite},
		},
		Keywords: []Keyword{
			// Dataset names and acronyms first: most specific wins ties.
			{Term: "sentinel-2", Datasets: []string{"sentinel-2-l2a"}},
			{Term: "sentinel-1", Datasets: []string{"sentinel-1-grd", "sentinel-1-rtc"}},
			{Term: "sentinel", Datasets: []string{"sentinel-2-l2a", "sentinel-1-grd"}},
			{Term: "landsat", Datasets: []string{"landsat-c2-l2"}},
			{Term: "hls", Datasets: []string{"hls2-s30"}},
			{Term: "naip", Datasets: []string{"naip"}},
			{Term: "sar", Datasets: []string{"sentinel-1-grd", "sentinel-1-rtc"}},
			{Term: "radar", Datasets: []string{"sentinel-1-grd"}},
			{Term: "aerial", Datasets: []string{"naip"}},

			// Domain terms
			{Term: "wildfire", Datasets: []string{"modis-64a1-061", "sentinel-2-l2a", "landsat-c2-l2"}},
			{Term: "fire", Datasets: []string{"modis-64a1-061", "sentinel-2-l2a"}},
			{Term: "burn", Datasets: []string{"modis-64a1-061", "sentinel-2-l2a"}},
			{Term: "flood", Datasets: []string{"sentinel-1-grd", "sentinel-1-rtc"}},
			{Term: "hurricane", Datasets: []string{"sentinel-1-grd", "sentinel-2-l2a"}},
			{Term: "storm", Datasets: []string{"sentinel-1-grd"}},
			{Term: "vegetation", Datasets: []string{"modis-13q1-061", "sentinel-2-l2a"}},
			{Term: "ndvi", Datasets: []string{"modis-13q1-061", "sentinel-2-l2a"}},
			{Term: "drought", Datasets: []string{"modis-13q1-061"}},
			{Term: "elevation", Datasets: []string{"cop-dem-glo-30", "cop-dem-glo-90"}},
			{Term: "terrain", Datasets: []string{"cop-dem-glo-30", "nasadem"}},
			{Term: "dem", Datasets: []string{"cop-dem-glo-30", "cop-dem-glo-90", "nasadem"}},
			{Term: "slope", Datasets: []string{"cop-dem-glo-30"}},
			{Term: "topography", Datasets: []string{"cop-dem-glo-30", "nasadem"}},

			// Generic imagery terms last
			{Term: "optical", Datasets: []string{"sentinel-2-l2a", "landsat-c2-l2"}},
			{Term: "imagery", Datasets: []string{"sentinel-2-l2a", "landsat-c2-l2"}},
			{Term: "satellite", Datasets: []string{"sentinel-2-l2a", "landsat-c2-l2"}},
		},
		Gazetteer: []GazetteerEntry{
			// Names that generic geocoders routinely resolve to namesake
			// institutions (hospitals, colleges) instead of the region.
			{Name: "sierra nevada", Aliases: []string{"sierra nevada mountains", "sierra nevada range"}, BBox: [4]float64{-120.8, 35.3, -117.6, 40.0}},
			{Name: "cascade range", Aliases: []string{"cascades", "cascade mountains"}, BBox: [4]float64{-122.7, 40.5, -120.0, 49.0}},
			{Name: "rocky mountains", Aliases: []string{"rockies"}, BBox: [4]float64{-117.0, 35.0, -104.0, 49.0}},
			{Name: "appalachian mountains", Aliases: []string{"appalachians"}, BBox: [4]float64{-84.5, 33.5, -68.0, 46.0}},
			{Name: "northern california", Aliases: []string{"norcal"}, BBox: [4]float64{-124.5, 37.0, -119.9, 42.0}},
			{Name: "southern california", Aliases: []string{"socal"}, BBox: [4]float64{-121.0, 32.5, -114.1, 36.5}},
			{Name: "pacific northwest", BBox: [4]float64{-125.0, 42.0, -116.5, 49.0}},
			{Name: "gulf coast", Aliases: []string{"gulf of mexico coast"}, BBox: [4]float64{-97.8, 25.8, -80.5, 31.0}},
			{Name: "florida keys", Aliases: []string{"the keys"}, BBox: [4]float64{-82.2, 24.4, -80.0, 25.6}},
			{Name: "great plains", BBox: [4]float64{-104.5, 33.0, -96.0, 49.0}},
			{Name: "big sur", BBox: [4]float64{-121.9, 35.8, -121.3, 36.5}},
		},
	}
}
