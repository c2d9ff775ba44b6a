// Package features defines the built-in OSM feature categories that
// osmprint can download: each category names the Overpass filters that
// select its elements, the default style for its layer, and whether a
// derived label layer should be generated for it.
package features

import (
	"strings"

	"github.com/NERVsystems/osmprint/pkg/style"
)

// Category describes one downloadable feature layer.
type Category struct {
	ID           int
	Name         string
	Display      string
	Filters      []string
	Style        style.Style
	CreateLabels bool
}

// LineOnly reports whether the category is road/trail-like: closed ways
// in such categories must stay LineStrings (a roundabout is a road, not
// an area).
func (c Category) LineOnly() bool {
	return strings.Contains(c.Name, "roads") || strings.Contains(c.Name, "trails")
}

// IncludePoints reports whether bare tagged nodes should become Point
// features for this category. Only the water-bodies pass keeps them;
// elsewhere point nodes are topology, not features.
func (c Category) IncludePoints() bool {
	return c.Name == "water_bodies"
}

// ByName returns the category with the given name.
func ByName(name string) (Category, bool) {
	for _, c := range All() {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// All returns every available feature category in catalogue order.
func All() []Category {
	return []Category{
		{
			ID:      1,
			Name:    "bays",
			Display: "Bays",
			Filters: []string{
				`way["natural"="bay"]`,
				`relation["natural"="bay"]`,
			},
			Style:        style.Style{Color: "#4682B4", Weight: 1, FillColor: "#87CEEB", FillOpacity: 0.4},
			CreateLabels: true,
		},
		{
			ID:      2,
			Name:    "water_bodies",
			Display: "Water Bodies & Lakes",
			Filters: []string{
				// River polygons are excluded; they are often badly mapped.
				`way["natural"="water"]["water"!="river"]`,
				`relation["natural"="water"]["water"!="river"]`,
				`way["natural"="water"][!"water"]`,
				`relation["natural"="water"][!"water"]`,
				`way["water"="lake"]`,
				`relation["water"="lake"]`,
				`way["water"="reservoir"]`,
				`relation["water"="reservoir"]`,
				`way["water"="pond"]`,
				`relation["water"="pond"]`,
				`way["water"="basin"]`,
				`relation["water"="basin"]`,
				`way["landuse"="reservoir"]`,
				`relation["landuse"="reservoir"]`,
			},
			Style:        style.Style{Color: "#4682B4", Weight: 1, FillColor: "#87CEEB", FillOpacity: 0.6},
			CreateLabels: true,
		},
		{
			ID:      3,
			Name:    "rivers",
			Display: "Rivers",
			Filters: []string{
				`way["waterway"="river"]`,
				`relation["waterway"="river"]`,
			},
			Style: style.Style{Color: "#4682B4", Weight: 2, Opacity: 1.0},
		},
		{
			ID:      4,
			Name:    "roads_major",
			Display: "Major Roads",
			Filters: []string{
				`way["highway"~"motorway|motorway_link|trunk|trunk_link|primary|primary_link|secondary|secondary_link"]`,
			},
			Style: style.Style{Color: "#FFD700", Weight: 3, Opacity: 1.0},
		},
		{
			ID:      5,
			Name:    "roads_residential",
			Display: "Residential Roads",
			Filters: []string{
				`way["highway"="residential"]`,
				`way["highway"="living_street"]`,
			},
			Style: style.Style{Color: "#FF0000", Weight: 1, Opacity: 0.8},
		},
		{
			ID:      6,
			Name:    "railways",
			Display: "Railways",
			Filters: []string{
				`way["railway"~"rail|light_rail|subway|tram"]`,
			},
			Style: style.Style{Color: "#000000", Weight: 2, Opacity: 0.8, DashArray: "5,5"},
		},
		{
			ID:      7,
			Name:    "protected_areas",
			Display: "Protected areas",
			Filters: []string{
				`way["boundary"="protected_area"]`,
				`relation["boundary"="protected_area"]`,
				`way["leisure"="nature_reserve"]`,
				`relation["leisure"="nature_reserve"]`,
			},
			Style: style.Style{Color: "#228B22", Weight: 1, FillColor: "#90EE90", FillOpacity: 0.3},
		},
		{
			ID:      8,
			Name:    "cities",
			Display: "Cities",
			Filters: []string{
				`node["place"~"city|town"]`,
			},
			Style: style.Style{Color: "#FF0000", Weight: 1},
		},
		{
			ID:      9,
			Name:    "coastlines",
			Display: "Coastlines",
			Filters: []string{
				`way["natural"="coastline"]`,
			},
			Style: style.Style{Color: "#000080", Weight: 2, Opacity: 1.0},
		},
		{
			ID:      10,
			Name:    "streams",
			Display: "Streams",
			Filters: []string{
				`way["waterway"="stream"]`,
				`way["waterway"="canal"]`,
			},
			Style: style.Style{Color: "#4682B4", Weight: 1, Opacity: 1.0},
		},
		{
			ID:      11,
			Name:    "roads_local",
			Display: "Local Roads",
			Filters: []string{
				`way["highway"~"unclassified|tertiary|tertiary_link"]`,
			},
			Style: style.Style{Color: "#FFF8DC", Weight: 2, Opacity: 0.9},
		},
		{
			ID:      12,
			Name:    "paths_trails",
			Display: "Paths/Trails",
			Filters: []string{
				`way["highway"~"path|footway|cycleway|bridleway|track"]`,
			},
			Style: style.Style{Color: "#CD853F", Weight: 1, Opacity: 0.7, DashArray: "2,2"},
		},
		{
			ID:      13,
			Name:    "parks_reserves",
			Display: "Parks/reserves",
			Filters: []string{
				`way["leisure"="park"]`,
				`relation["leisure"="park"]`,
				`way["landuse"="recreation_ground"]`,
				`relation["landuse"="recreation_ground"]`,
			},
			Style: style.Style{Color: "#228B22", Weight: 1, FillColor: "#90EE90", FillOpacity: 0.4},
		},
		{
			ID:      14,
			Name:    "mountain_peaks",
			Display: "Mountain peaks",
			Filters: []string{
				`node["natural"="peak"]`,
			},
			Style: style.Style{Color: "#8B4513", Weight: 1},
		},
		{
			ID:      15,
			Name:    "buildings",
			Display: "Buildings",
			Filters: []string{
				`way["building"]`,
				`relation["building"]`,
			},
			Style: style.Style{Color: "#696969", Weight: 1, FillColor: "#D3D3D3", FillOpacity: 0.5},
		},
		{
			ID:      16,
			Name:    "golf_courses",
			Display: "Golf Courses",
			Filters: []string{
				`way["leisure"="golf_course"]`,
				`relation["leisure"="golf_course"]`,
			},
			Style: style.Style{Color: "#90EE90", Weight: 1, FillColor: "#228B22", FillOpacity: 0.3},
		},
		{
			ID:      17,
			Name:    "ski_resorts",
			Display: "Ski Resorts",
			Filters: []string{
				`way["landuse"="winter_sports"]`,
				`relation["landuse"="winter_sports"]`,
				`way["leisure"="ski_resort"]`,
				`relation["leisure"="ski_resort"]`,
				`way["site"="piste"]`,
				`relation["site"="piste"]`,
			},
			Style: style.Style{Color: "#0066CC", Weight: 1, FillColor: "#ADD8E6", FillOpacity: 0.3},
		},
		{
			ID:      18,
			Name:    "ski_runs",
			Display: "Ski Runs/Pistes",
			Filters: []string{
				`way["piste:type"="downhill"]`,
				`way["piste:type"="nordic"]`,
				`way["piste:type"="skitour"]`,
			},
			Style: style.Style{Color: "#0000FF", Weight: 2, Opacity: 0.8},
		},
		{
			ID:      19,
			Name:    "ski_lifts",
			Display: "Ski Lifts",
			Filters: []string{
				`way["aerialway"~"cable_car|gondola|chair_lift|drag_lift|t-bar|j-bar|platter|rope_tow"]`,
			},
			Style: style.Style{Color: "#FF0000", Weight: 2, Opacity: 0.8, DashArray: "5,3"},
		},
		{
			ID:      20,
			Name:    "airports",
			Display: "Airports",
			Filters: []string{
				`way["aeroway"="aerodrome"]`,
				`relation["aeroway"="aerodrome"]`,
				`node["aeroway"="aerodrome"]`,
			},
			Style: style.Style{Color: "#8B008B", Weight: 1, FillColor: "#DDA0DD", FillOpacity: 0.3},
		},
		{
			ID:      21,
			Name:    "runways",
			Display: "Airport Runways",
			Filters: []string{
				`way["aeroway"="runway"]`,
			},
			Style: style.Style{Color: "#696969", Weight: 3, Opacity: 1.0},
		},
	}
}
