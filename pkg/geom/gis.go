package geom

import "github.com/paulmach/orb"

// Processor is the capability surface expected from an external
// geometry-processing engine. The core pipeline never performs these
// operations itself; the surrounding application supplies an
// implementation for features such as road buffering and reprojection
// of non-WGS84 inputs.
type Processor interface {
	// Buffer expands the geometry outward by the given distance.
	Buffer(g orb.Geometry, distance float64) (orb.Geometry, error)

	// Dissolve merges overlapping geometries into one.
	Dissolve(gs []orb.Geometry) (orb.Geometry, error)

	// Transform reprojects the geometry between coordinate reference
	// systems named by authority code (e.g. "EPSG:3857" to "EPSG:4326").
	Transform(g orb.Geometry, sourceCRS, targetCRS string) (orb.Geometry, error)
}
