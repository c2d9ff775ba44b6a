// Package osm provides the Overpass and Nominatim clients used to fetch
// raw OpenStreetMap data, and the element types matching the Overpass
// "out geom" JSON shape.
package osm

// LatLon is a single coordinate pair as embedded in Overpass geometry
// arrays.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Member represents a relation member with embedded geometry.
type Member struct {
	Type     string   `json:"type"`
	Ref      int64    `json:"ref"`
	Role     string   `json:"role"`
	Geometry []LatLon `json:"geometry,omitempty"`
}

// Element represents an element returned from the Overpass API with
// "out geom" output. Lat/Lon are pointers so a node lacking coordinates
// can be told apart from one at (0, 0).
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat,omitempty"`
	Lon      *float64          `json:"lon,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Geometry []LatLon          `json:"geometry,omitempty"` // For ways
	Nodes    []int64           `json:"nodes,omitempty"`    // For ways, referenced node IDs
	Members  []Member          `json:"members,omitempty"`  // For relations
}

// Response is the top-level Overpass JSON response.
type Response struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	Elements  []Element `json:"elements"`
}
