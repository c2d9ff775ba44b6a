// Package geom converts raw OSM elements into canonical geometry
// features and derives representative label points from them.
//
// Geometries use the orb vocabulary (Point, LineString, Polygon,
// MultiPolygon). Multipolygon assembly follows OSM relation semantics:
// outer-role members become polygon boundaries, inner-role members
// become holes.
package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/NERVsystems/osmprint/pkg/style"
)

// Feature is a geometry with its source tags and an optional style
// descriptor injected by the downloading category. Features are
// immutable once produced by the builder.
type Feature struct {
	Geometry   orb.Geometry
	Properties map[string]string
	Style      *style.Style
}

// Name returns the feature's name tag, or "" if absent.
func (f Feature) Name() string {
	return f.Properties["name"]
}

// ToGeoJSON converts features into a GeoJSON feature collection. The
// style descriptor, when present, is carried in a "_style" property so
// downstream renderers can pick it up.
func ToGeoJSON(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}
		if f.Style != nil {
			gf.Properties["_style"] = *f.Style
		}
		fc.Append(gf)
	}
	return fc
}
