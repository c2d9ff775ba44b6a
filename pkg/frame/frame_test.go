package frame

import (
	"math"
	"testing"

	"github.com/NERVsystems/osmprint/pkg/geo"
)

func TestGeometryRingShape(t *testing.T) {
	tests := []struct {
		name        string
		bbox        geo.BoundingBox
		orientation string
	}{
		{
			name:        "Portrait mid-latitude",
			bbox:        geo.BoundingBox{South: 41.0, West: -81.5, North: 41.6, East: -81.0},
			orientation: "portrait",
		},
		{
			name:        "Landscape mid-latitude",
			bbox:        geo.BoundingBox{South: 41.0, West: -81.5, North: 41.6, East: -81.0},
			orientation: "landscape",
		},
		{
			name:        "Portrait equator",
			bbox:        geo.BoundingBox{South: -0.5, West: 10.0, North: 0.5, East: 11.0},
			orientation: "portrait",
		},
		{
			name:        "Landscape high latitude",
			bbox:        geo.BoundingBox{South: 64.0, West: -22.0, North: 64.4, East: -21.0},
			orientation: "landscape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polygon, err := Geometry(tt.bbox, tt.orientation)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(polygon) != 1 {
				t.Fatalf("Expected 1 ring, got %d", len(polygon))
			}
			ring := polygon[0]
			if len(ring) != 5 {
				t.Fatalf("Expected exactly 5 points, got %d", len(ring))
			}
			if ring[0] != ring[4] {
				t.Error("Expected ring to close on its start point")
			}

			// The frame bbox must be centered on the input bbox midpoint.
			frameBBox := BBox(polygon)
			frameCenter := frameBBox.Center()
			wantCenter := tt.bbox.Center()
			if math.Abs(frameCenter.Latitude-wantCenter.Latitude) > 1e-9 {
				t.Errorf("Frame center latitude %f, want %f", frameCenter.Latitude, wantCenter.Latitude)
			}
			if math.Abs(frameCenter.Longitude-wantCenter.Longitude) > 1e-9 {
				t.Errorf("Frame center longitude %f, want %f", frameCenter.Longitude, wantCenter.Longitude)
			}
		})
	}
}

func TestGeometryRejectsInvalidBBox(t *testing.T) {
	tests := []struct {
		name string
		bbox geo.BoundingBox
	}{
		{name: "Inverted latitudes", bbox: geo.BoundingBox{South: 41.6, West: -81.5, North: 41.0, East: -81.0}},
		{name: "Inverted longitudes", bbox: geo.BoundingBox{South: 41.0, West: -81.0, North: 41.6, East: -81.5}},
		{name: "Degenerate", bbox: geo.BoundingBox{South: 41.0, West: -81.5, North: 41.0, East: -81.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Geometry(tt.bbox, "portrait"); err == nil {
				t.Error("Expected validation error, got none")
			}
		})
	}
}

func TestOrientationSwapsDimensions(t *testing.T) {
	bbox := geo.BoundingBox{South: 41.0, West: -81.5, North: 41.6, East: -81.0}

	portrait, err := Geometry(bbox, "portrait")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	landscape, err := Geometry(bbox, "landscape")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pBox := BBox(portrait)
	lBox := BBox(landscape)

	// Portrait is taller than wide in ground terms; landscape the
	// opposite. Latitude extents swap exactly (height is latitude).
	if !(pBox.LatRange() > lBox.LatRange()) {
		t.Errorf("Expected portrait latitude extent (%f) > landscape (%f)", pBox.LatRange(), lBox.LatRange())
	}
	if !(lBox.LonRange() > pBox.LonRange()) {
		t.Errorf("Expected landscape longitude extent (%f) > portrait (%f)", lBox.LonRange(), pBox.LonRange())
	}
}

func TestDimensionsAt(t *testing.T) {
	dims := DimensionsAt(0, "portrait")

	// At the equator a degree of longitude and latitude are both
	// ~111000 m, so the degree extents mirror the inch ratio.
	wantHeight := 14 * 0.0254 / 111000
	wantWidth := 11 * 0.0254 / 111000
	if math.Abs(dims.HeightDeg-wantHeight) > 1e-12 {
		t.Errorf("HeightDeg = %g, want %g", dims.HeightDeg, wantHeight)
	}
	if math.Abs(dims.WidthDeg-wantWidth) > 1e-12 {
		t.Errorf("WidthDeg = %g, want %g", dims.WidthDeg, wantWidth)
	}

	// At 60 degrees north a longitude degree is half as long, so the
	// frame needs twice the longitude extent.
	at60 := DimensionsAt(60, "portrait")
	if math.Abs(at60.WidthDeg-2*dims.WidthDeg) > 1e-9 {
		t.Errorf("WidthDeg at 60N = %g, want %g", at60.WidthDeg, 2*dims.WidthDeg)
	}
	if math.Abs(at60.HeightDeg-dims.HeightDeg) > 1e-12 {
		t.Errorf("HeightDeg must not vary with latitude: %g vs %g", at60.HeightDeg, dims.HeightDeg)
	}
}
