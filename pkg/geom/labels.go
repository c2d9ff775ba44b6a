package geom

import "github.com/paulmach/orb"

// RepresentativePoint derives the point used to place a label for the
// geometry. The rules are deliberately cheap approximations:
//
//   - Point: itself
//   - LineString: the vertex at index len/2 (integer floor), not the
//     true geometric midpoint
//   - Polygon: the arithmetic mean of the outer ring's vertices, not an
//     area-weighted centroid
//   - MultiPolygon: the vertex average of the first part's outer ring
//
// The second return is false when no point can be derived.
func RepresentativePoint(g orb.Geometry) (orb.Point, bool) {
	switch v := g.(type) {
	case orb.Point:
		return v, true
	case orb.LineString:
		if len(v) == 0 {
			return orb.Point{}, false
		}
		return v[len(v)/2], true
	case orb.Polygon:
		if len(v) == 0 {
			return orb.Point{}, false
		}
		return ringVertexAverage(v[0])
	case orb.MultiPolygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return orb.Point{}, false
		}
		return ringVertexAverage(v[0][0])
	default:
		return orb.Point{}, false
	}
}

func ringVertexAverage(r orb.Ring) (orb.Point, bool) {
	if len(r) == 0 {
		return orb.Point{}, false
	}
	var xSum, ySum float64
	for _, pt := range r {
		xSum += pt[0]
		ySum += pt[1]
	}
	n := float64(len(r))
	return orb.Point{xSum / n, ySum / n}, true
}

// LabelPoints derives Point features for label placement from named
// features. Features without a non-empty name tag are skipped; the
// output carries only the name property. Duplicate names may appear
// here: global deduplication happens at document emission, where the
// label registry's scope is the whole output document rather than one
// feature layer.
func LabelPoints(features []Feature) []Feature {
	labels := make([]Feature, 0, len(features))
	for _, f := range features {
		name := f.Name()
		if name == "" {
			continue
		}
		pos, ok := RepresentativePoint(f.Geometry)
		if !ok {
			continue
		}
		labels = append(labels, Feature{
			Geometry:   pos,
			Properties: map[string]string{"name": name},
		})
	}
	return labels
}
