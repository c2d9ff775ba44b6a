// Package frame builds the fixed-size print frame used to restrict
// downloads to the area that fits a physical print: an 11x14 inch
// rectangle in WGS84 centered on a bounding box.
package frame

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/osmprint/pkg/geo"
)

// Frame dimensions in inches
const (
	WidthInches  = 11.0
	HeightInches = 14.0
)

// Dimensions describes the frame extent for a given latitude.
type Dimensions struct {
	WidthDeg     float64
	HeightDeg    float64
	WidthInches  float64
	HeightInches float64
}

// orientedInches returns (width, height) in inches for the orientation.
// Landscape swaps which dimension is width.
func orientedInches(orientation string) (float64, float64) {
	if strings.EqualFold(orientation, "landscape") {
		return HeightInches, WidthInches
	}
	return WidthInches, HeightInches
}

// DimensionsAt returns the frame size in degrees at the given center
// latitude. Height converts at the constant ~111000 m per degree of
// latitude; width is divided by cos(latitude)*111000, since a degree of
// longitude shrinks toward the poles.
func DimensionsAt(centerLat float64, orientation string) Dimensions {
	widthIn, heightIn := orientedInches(orientation)
	widthM := geo.InchesToMeters(widthIn)
	heightM := geo.InchesToMeters(heightIn)

	return Dimensions{
		WidthDeg:     widthM / geo.MetersPerDegreeLon(centerLat),
		HeightDeg:    heightM / geo.MetersPerDegreeLat,
		WidthInches:  widthIn,
		HeightInches: heightIn,
	}
}

// Geometry returns the frame rectangle centered on the bbox midpoint as
// a closed 5-point polygon ring (SW, SE, NE, NW, SW).
func Geometry(bbox geo.BoundingBox, orientation string) (orb.Polygon, error) {
	if err := bbox.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bbox for frame: %w", err)
	}

	center := bbox.Center()
	dims := DimensionsAt(center.Latitude, orientation)

	north := center.Latitude + dims.HeightDeg/2
	south := center.Latitude - dims.HeightDeg/2
	east := center.Longitude + dims.WidthDeg/2
	west := center.Longitude - dims.WidthDeg/2

	ring := orb.Ring{
		{west, south},
		{east, south},
		{east, north},
		{west, north},
		{west, south},
	}
	return orb.Polygon{ring}, nil
}

// BBox extracts (south, west, north, east) from a frame polygon.
func BBox(polygon orb.Polygon) geo.BoundingBox {
	bound := polygon.Bound()
	return geo.BoundingBox{
		South: bound.Min[1],
		West:  bound.Min[0],
		North: bound.Max[1],
		East:  bound.Max[0],
	}
}
