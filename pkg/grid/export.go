package grid

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON exports the active grid points as a FeatureCollection for
// downstream visualization. limit caps the number of features;
// limit <= 0 exports every active point.
func (g *FibGrid) GeoJSON(limit int) *geojson.FeatureCollection {
	if limit <= 0 || limit > g.Len() {
		limit = g.Len()
	}

	fc := geojson.NewFeatureCollection()
	g.EachActive(func(gpi int32, lon, lat float64, cell int32) bool {
		f := geojson.NewFeature(orb.Point{lon, lat})
		f.Properties["gpi"] = gpi
		f.Properties["cell"] = cell
		fc.Append(f)
		return len(fc.Features) < limit
	})
	return fc
}
