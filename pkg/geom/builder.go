package geom

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/osmprint/pkg/metrics"
	"github.com/NERVsystems/osmprint/pkg/osm"
)

// areaTagKeys are the tag keys whose presence implies a closed way is
// an area rather than a closed line.
var areaTagKeys = []string{"building", "landuse", "natural", "leisure", "amenity"}

// Options controls a single build pass.
type Options struct {
	// IncludePoints keeps tagged bare nodes as Point features. Only the
	// water-feature pass wants them; elsewhere nodes are topology.
	IncludePoints bool

	// LineOnly suppresses polygon promotion entirely: roads and trails
	// stay LineStrings even when closed (roundabouts).
	LineOnly bool

	// Category names the pass for metrics; it does not affect output.
	Category string
}

// Builder converts raw OSM elements into geometry features.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder using the default logger.
func NewBuilder() *Builder {
	return &Builder{logger: slog.Default()}
}

// SetLogger sets the logger for the builder
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logger
}

// Build converts elements into features. Unconvertible elements are
// skipped, never an error: missing geometry, empty rings, relations
// without outer members, and relation types other than multipolygon or
// boundary all yield no feature.
func (b *Builder) Build(elements []osm.Element, opts Options) []Feature {
	// Index nodes by id for member resolution. Upstream queries embed
	// geometry per element, but callers that only embed raw references
	// rely on this index being built.
	nodes := make(map[int64]osm.Element)
	for _, el := range elements {
		if el.Type == "node" {
			nodes[el.ID] = el
		}
	}

	features := make([]Feature, 0, len(elements))
	for _, el := range elements {
		f, ok := b.elementToFeature(el, nodes, opts)
		if !ok {
			continue
		}
		metrics.RecordFeatureConverted(opts.Category, f.Geometry.GeoJSONType())
		features = append(features, f)
	}
	return features
}

func (b *Builder) elementToFeature(el osm.Element, nodes map[int64]osm.Element, opts Options) (Feature, bool) {
	switch el.Type {
	case "node":
		return b.nodeToFeature(el, opts)
	case "way":
		return b.wayToFeature(el, opts)
	case "relation":
		return b.relationToFeature(el, opts)
	default:
		metrics.RecordElementSkipped(opts.Category, "unknown_type")
		return Feature{}, false
	}
}

func (b *Builder) nodeToFeature(el osm.Element, opts Options) (Feature, bool) {
	if !opts.IncludePoints {
		return Feature{}, false
	}
	if el.Lat == nil || el.Lon == nil {
		metrics.RecordElementSkipped(opts.Category, "missing_geometry")
		return Feature{}, false
	}
	// Bare nodes are topology, not features.
	if len(el.Tags) == 0 {
		return Feature{}, false
	}
	return Feature{
		Geometry:   orb.Point{*el.Lon, *el.Lat},
		Properties: copyTags(el.Tags),
	}, true
}

func (b *Builder) wayToFeature(el osm.Element, opts Options) (Feature, bool) {
	if len(el.Geometry) == 0 {
		metrics.RecordElementSkipped(opts.Category, "missing_geometry")
		return Feature{}, false
	}

	coords := toLineString(el.Geometry)
	props := copyTags(el.Tags)

	if opts.LineOnly {
		return Feature{Geometry: coords, Properties: props}, true
	}

	if isClosed(coords) && impliesArea(el.Tags) {
		return Feature{
			Geometry:   orb.Polygon{orb.Ring(coords)},
			Properties: props,
		}, true
	}

	return Feature{Geometry: coords, Properties: props}, true
}

func (b *Builder) relationToFeature(el osm.Element, opts Options) (Feature, bool) {
	if len(el.Members) == 0 {
		metrics.RecordElementSkipped(opts.Category, "no_members")
		return Feature{}, false
	}

	relType := el.Tags["type"]
	if relType != "multipolygon" && relType != "boundary" {
		metrics.RecordElementSkipped(opts.Category, "unsupported_relation_type")
		return Feature{}, false
	}

	var outers, inners []orb.Ring
	for _, member := range el.Members {
		if member.Type != "way" || len(member.Geometry) == 0 {
			continue
		}
		ring := orb.Ring(toLineString(member.Geometry))
		switch member.Role {
		case "outer":
			outers = append(outers, ring)
		case "inner":
			inners = append(inners, ring)
		default:
			// Roleless members count as outer rings.
			outers = append(outers, ring)
		}
	}

	if len(outers) == 0 {
		metrics.RecordElementSkipped(opts.Category, "no_outer_rings")
		return Feature{}, false
	}

	props := copyTags(el.Tags)

	if len(outers) == 1 {
		polygon := orb.Polygon{closeRing(outers[0])}
		for _, inner := range inners {
			polygon = append(polygon, closeRing(inner))
		}
		return Feature{Geometry: polygon, Properties: props}, true
	}

	// Multiple outer rings fan out into a MultiPolygon of single-ring
	// polygons. Inner rings are not distributed to their containing
	// outer ring; holes are only honored in the single-outer case.
	multi := make(orb.MultiPolygon, 0, len(outers))
	for _, outer := range outers {
		multi = append(multi, orb.Polygon{closeRing(outer)})
	}
	return Feature{Geometry: multi, Properties: props}, true
}

// toLineString converts embedded Overpass geometry into lon/lat order.
func toLineString(coords []osm.LatLon) orb.LineString {
	ls := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		ls = append(ls, orb.Point{c.Lon, c.Lat})
	}
	return ls
}

// isClosed reports whether the way forms a closed ring: more than two
// coordinates with the first equal to the last.
func isClosed(ls orb.LineString) bool {
	return len(ls) > 2 && ls[0] == ls[len(ls)-1]
}

// impliesArea reports whether the tags mark a closed way as an area.
func impliesArea(tags map[string]string) bool {
	if tags["area"] == "yes" {
		return true
	}
	for _, key := range areaTagKeys {
		if _, ok := tags[key]; ok {
			return true
		}
	}
	return false
}

// closeRing returns the ring closed, appending the first coordinate if
// needed. Rings used as polygon boundaries are always closed by the
// builder, never assumed closed in the input.
func closeRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return r
	}
	if r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
