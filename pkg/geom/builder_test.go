package geom

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/osmprint/pkg/osm"
)

func closedSquare() []osm.LatLon {
	return []osm.LatLon{
		{Lat: 41.1, Lon: -81.4},
		{Lat: 41.1, Lon: -81.2},
		{Lat: 41.3, Lon: -81.2},
		{Lat: 41.3, Lon: -81.4},
		{Lat: 41.1, Lon: -81.4},
	}
}

func TestBuildWayPromotion(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		geometry []osm.LatLon
		lineOnly bool
		expected string
	}{
		{
			name:     "Closed way with building tag promotes to Polygon",
			tags:     map[string]string{"building": "yes"},
			geometry: closedSquare(),
			expected: "Polygon",
		},
		{
			name:     "Closed way with natural=water promotes to Polygon",
			tags:     map[string]string{"natural": "water", "name": "Test Lake"},
			geometry: closedSquare(),
			expected: "Polygon",
		},
		{
			name:     "Closed way with explicit area tag promotes to Polygon",
			tags:     map[string]string{"area": "yes"},
			geometry: closedSquare(),
			expected: "Polygon",
		},
		{
			name:     "Closed highway stays LineString in line-only pass (roundabout)",
			tags:     map[string]string{"highway": "residential"},
			geometry: closedSquare(),
			lineOnly: true,
			expected: "LineString",
		},
		{
			name:     "Closed way without area-implying tags stays LineString",
			tags:     map[string]string{"barrier": "fence"},
			geometry: closedSquare(),
			expected: "LineString",
		},
		{
			name: "Open way with building tag stays LineString",
			tags: map[string]string{"building": "yes"},
			geometry: []osm.LatLon{
				{Lat: 41.1, Lon: -81.4},
				{Lat: 41.1, Lon: -81.2},
				{Lat: 41.3, Lon: -81.2},
			},
			expected: "LineString",
		},
		{
			name:     "Closed leisure way in line-only pass stays LineString",
			tags:     map[string]string{"leisure": "track"},
			geometry: closedSquare(),
			lineOnly: true,
			expected: "LineString",
		},
	}

	builder := NewBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := []osm.Element{{Type: "way", ID: 1, Tags: tt.tags, Geometry: tt.geometry}}
			features := builder.Build(elements, Options{LineOnly: tt.lineOnly})
			if len(features) != 1 {
				t.Fatalf("Expected 1 feature, got %d", len(features))
			}
			if got := features[0].Geometry.GeoJSONType(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestBuildClosedWaterWayCoordinates(t *testing.T) {
	builder := NewBuilder()
	elements := []osm.Element{{
		Type:     "way",
		ID:       1,
		Tags:     map[string]string{"natural": "water", "name": "Test Lake"},
		Geometry: closedSquare(),
	}}

	features := builder.Build(elements, Options{})
	if len(features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(features))
	}

	polygon, ok := features[0].Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("Expected Polygon, got %T", features[0].Geometry)
	}
	if len(polygon) != 1 {
		t.Fatalf("Expected 1 ring, got %d", len(polygon))
	}
	ring := polygon[0]
	if len(ring) != 5 {
		t.Fatalf("Expected 5 ring coordinates, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("Expected ring to be closed")
	}
	if ring[0] != (orb.Point{-81.4, 41.1}) {
		t.Errorf("Expected first point (-81.4, 41.1) in lon/lat order, got %v", ring[0])
	}
	if features[0].Properties["name"] != "Test Lake" {
		t.Errorf("Expected name property to flow through, got %q", features[0].Properties["name"])
	}
}

func TestBuildNodes(t *testing.T) {
	lat, lon := 41.2, -81.3
	tagged := osm.Element{Type: "node", ID: 1, Lat: &lat, Lon: &lon, Tags: map[string]string{"natural": "spring"}}
	bare := osm.Element{Type: "node", ID: 2, Lat: &lat, Lon: &lon}
	missing := osm.Element{Type: "node", ID: 3, Tags: map[string]string{"natural": "spring"}}

	builder := NewBuilder()

	t.Run("Points excluded by default", func(t *testing.T) {
		features := builder.Build([]osm.Element{tagged}, Options{})
		if len(features) != 0 {
			t.Errorf("Expected 0 features without IncludePoints, got %d", len(features))
		}
	})

	t.Run("Tagged node becomes Point when included", func(t *testing.T) {
		features := builder.Build([]osm.Element{tagged}, Options{IncludePoints: true})
		if len(features) != 1 {
			t.Fatalf("Expected 1 feature, got %d", len(features))
		}
		pt, ok := features[0].Geometry.(orb.Point)
		if !ok {
			t.Fatalf("Expected Point, got %T", features[0].Geometry)
		}
		if pt != (orb.Point{-81.3, 41.2}) {
			t.Errorf("Expected point (-81.3, 41.2), got %v", pt)
		}
	})

	t.Run("Bare node yields no feature", func(t *testing.T) {
		features := builder.Build([]osm.Element{bare}, Options{IncludePoints: true})
		if len(features) != 0 {
			t.Errorf("Expected 0 features for untagged node, got %d", len(features))
		}
	})

	t.Run("Node without coordinates is skipped", func(t *testing.T) {
		features := builder.Build([]osm.Element{missing}, Options{IncludePoints: true})
		if len(features) != 0 {
			t.Errorf("Expected 0 features for node without coordinates, got %d", len(features))
		}
	})
}

func relationMember(role string, coords []osm.LatLon) osm.Member {
	return osm.Member{Type: "way", Role: role, Geometry: coords}
}

func TestBuildRelations(t *testing.T) {
	outer := []osm.LatLon{
		{Lat: 41.0, Lon: -81.5},
		{Lat: 41.0, Lon: -81.0},
		{Lat: 41.5, Lon: -81.0},
		{Lat: 41.5, Lon: -81.5},
	}
	inner1 := []osm.LatLon{
		{Lat: 41.1, Lon: -81.4},
		{Lat: 41.1, Lon: -81.3},
		{Lat: 41.2, Lon: -81.3},
	}
	inner2 := []osm.LatLon{
		{Lat: 41.3, Lon: -81.2},
		{Lat: 41.3, Lon: -81.1},
		{Lat: 41.4, Lon: -81.1},
	}

	builder := NewBuilder()

	t.Run("Single outer with two inners yields Polygon with 3 rings", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   10,
			Tags: map[string]string{"type": "multipolygon", "natural": "water"},
			Members: []osm.Member{
				relationMember("outer", outer),
				relationMember("inner", inner1),
				relationMember("inner", inner2),
			},
		}
		features := builder.Build([]osm.Element{el}, Options{})
		if len(features) != 1 {
			t.Fatalf("Expected 1 feature, got %d", len(features))
		}
		polygon, ok := features[0].Geometry.(orb.Polygon)
		if !ok {
			t.Fatalf("Expected Polygon, got %T", features[0].Geometry)
		}
		if len(polygon) != 3 {
			t.Fatalf("Expected 3 rings (1 outer + 2 holes), got %d", len(polygon))
		}
		for i, ring := range polygon {
			if ring[0] != ring[len(ring)-1] {
				t.Errorf("Ring %d is not closed", i)
			}
		}
	})

	t.Run("Two outers yield MultiPolygon without holes", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   11,
			Tags: map[string]string{"type": "multipolygon"},
			Members: []osm.Member{
				relationMember("outer", outer),
				relationMember("outer", inner2),
				relationMember("inner", inner1),
			},
		}
		features := builder.Build([]osm.Element{el}, Options{})
		if len(features) != 1 {
			t.Fatalf("Expected 1 feature, got %d", len(features))
		}
		multi, ok := features[0].Geometry.(orb.MultiPolygon)
		if !ok {
			t.Fatalf("Expected MultiPolygon, got %T", features[0].Geometry)
		}
		if len(multi) != 2 {
			t.Fatalf("Expected 2 polygon parts, got %d", len(multi))
		}
		for i, part := range multi {
			if len(part) != 1 {
				t.Errorf("Part %d: expected 1 ring (inner rings are not distributed), got %d", i, len(part))
			}
		}
	})

	t.Run("Roleless member counts as outer", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   12,
			Tags: map[string]string{"type": "boundary"},
			Members: []osm.Member{
				relationMember("", outer),
			},
		}
		features := builder.Build([]osm.Element{el}, Options{})
		if len(features) != 1 {
			t.Fatalf("Expected 1 feature, got %d", len(features))
		}
		if _, ok := features[0].Geometry.(orb.Polygon); !ok {
			t.Errorf("Expected Polygon from roleless member, got %T", features[0].Geometry)
		}
	})

	t.Run("Relation without outer rings is dropped", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   13,
			Tags: map[string]string{"type": "multipolygon"},
			Members: []osm.Member{
				relationMember("inner", inner1),
			},
		}
		if features := builder.Build([]osm.Element{el}, Options{}); len(features) != 0 {
			t.Errorf("Expected 0 features, got %d", len(features))
		}
	})

	t.Run("Unsupported relation type is dropped", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   14,
			Tags: map[string]string{"type": "route"},
			Members: []osm.Member{
				relationMember("outer", outer),
			},
		}
		if features := builder.Build([]osm.Element{el}, Options{}); len(features) != 0 {
			t.Errorf("Expected 0 features, got %d", len(features))
		}
	})

	t.Run("Non-way members are ignored", func(t *testing.T) {
		el := osm.Element{
			Type: "relation",
			ID:   15,
			Tags: map[string]string{"type": "multipolygon"},
			Members: []osm.Member{
				{Type: "node", Role: "outer"},
				relationMember("outer", outer),
			},
		}
		features := builder.Build([]osm.Element{el}, Options{})
		if len(features) != 1 {
			t.Fatalf("Expected 1 feature, got %d", len(features))
		}
		if _, ok := features[0].Geometry.(orb.Polygon); !ok {
			t.Errorf("Expected Polygon, got %T", features[0].Geometry)
		}
	})
}

func TestBuildSkipsUnconvertible(t *testing.T) {
	builder := NewBuilder()
	elements := []osm.Element{
		{Type: "way", ID: 1},                    // no geometry
		{Type: "relation", ID: 2},               // no members
		{Type: "area", ID: 3},                   // unknown type
		{Type: "way", ID: 4, Geometry: nil},     // empty geometry
		{Type: "node", ID: 5},                   // no coordinates
	}
	if features := builder.Build(elements, Options{IncludePoints: true}); len(features) != 0 {
		t.Errorf("Expected malformed input to be skipped, got %d features", len(features))
	}
}

func TestBuildEmptyInput(t *testing.T) {
	builder := NewBuilder()
	if features := builder.Build(nil, Options{}); len(features) != 0 {
		t.Errorf("Expected empty output for empty input, got %d features", len(features))
	}
}
