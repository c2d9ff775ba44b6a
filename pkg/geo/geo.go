// Package geo provides geographic primitives shared across osmprint:
// WGS84 bounding boxes, locations, and the degree/meter approximations
// used by both the print-frame math and the page projection.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MetersPerDegreeLat is the approximate length of one degree of
	// latitude in meters. Latitude degrees are treated as constant;
	// longitude degrees shrink toward the poles (see MetersPerDegreeLon).
	MetersPerDegreeLat = 111000.0

	// MetersPerInch converts inches to meters (1 inch = 0.0254 m).
	MetersPerInch = 0.0254
)

// Location represents a geographic point in decimal degrees (WGS84).
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is an axis-aligned rectangle in WGS84 degrees.
// Invariant: South < North and West < East.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// ValidationError represents a validation error for coordinates or
// bounding boxes.
type ValidationError struct {
	Code     string
	Message  string
	Guidance string
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidateCoords checks if latitude and longitude are within valid ranges
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return ValidationError{
			Code:     "INVALID_LATITUDE",
			Message:  fmt.Sprintf("Latitude must be between -90 and 90, got %f", lat),
			Guidance: "Ensure latitude is in decimal degrees",
		}
	}
	if lon < -180 || lon > 180 {
		return ValidationError{
			Code:     "INVALID_LONGITUDE",
			Message:  fmt.Sprintf("Longitude must be between -180 and 180, got %f", lon),
			Guidance: "Ensure longitude is in decimal degrees",
		}
	}
	return nil
}

// NewBoundingBox constructs a validated bounding box. Degenerate or
// inverted boxes are rejected at construction.
func NewBoundingBox(south, west, north, east float64) (BoundingBox, error) {
	if err := ValidateCoords(south, west); err != nil {
		return BoundingBox{}, err
	}
	if err := ValidateCoords(north, east); err != nil {
		return BoundingBox{}, err
	}
	if south >= north || west >= east {
		return BoundingBox{}, ValidationError{
			Code:     "INVALID_BBOX",
			Message:  fmt.Sprintf("Invalid bbox: south >= north or west >= east (%f,%f,%f,%f)", south, west, north, east),
			Guidance: "Specify the box as south,west,north,east with south < north and west < east",
		}
	}
	return BoundingBox{South: south, West: west, North: north, East: east}, nil
}

// ParseBoundingBox parses a "south,west,north,east" string.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bbox must have 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		vals[i] = v
	}
	return NewBoundingBox(vals[0], vals[1], vals[2], vals[3])
}

// Validate re-checks the bounding box invariant on an existing value.
func (b BoundingBox) Validate() error {
	_, err := NewBoundingBox(b.South, b.West, b.North, b.East)
	return err
}

// Center returns the arithmetic midpoint of the box.
func (b BoundingBox) Center() Location {
	return Location{
		Latitude:  (b.South + b.North) / 2,
		Longitude: (b.West + b.East) / 2,
	}
}

// LatRange returns the latitude extent in degrees.
func (b BoundingBox) LatRange() float64 { return b.North - b.South }

// LonRange returns the longitude extent in degrees.
func (b BoundingBox) LonRange() float64 { return b.East - b.West }

// String formats the box as "south,west,north,east" (Overpass order).
func (b BoundingBox) String() string {
	return fmt.Sprintf("%f,%f,%f,%f", b.South, b.West, b.North, b.East)
}

// MetersPerDegreeLon returns the length of one degree of longitude in
// meters at the given latitude: cos(lat) * ~111000.
func MetersPerDegreeLon(lat float64) float64 {
	return math.Cos(lat*math.Pi/180) * MetersPerDegreeLat
}

// LatCorrection returns the cos(latitude) factor used to compare
// longitude extents against latitude extents as ground distances.
func LatCorrection(lat float64) float64 {
	return math.Cos(lat * math.Pi / 180)
}

// InchesToMeters converts inches to meters.
func InchesToMeters(inches float64) float64 {
	return inches * MetersPerInch
}
