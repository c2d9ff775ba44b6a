// Package style defines the style descriptor attached to downloaded
// feature layers and the geometry-kind defaults used when a feature
// carries no style of its own.
package style

// Style describes how a feature layer is drawn. Zero-valued fields
// fall back to geometry-kind defaults at emission time.
type Style struct {
	Color       string  `json:"color,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	DashArray   string  `json:"dashArray,omitempty"`
}

// Default is the geometry-kind fallback applied when neither the
// feature nor its layer carries a style.
func Default() Style {
	return Style{
		Color:       "black",
		Weight:      1,
		FillColor:   "none",
		FillOpacity: 0.5,
		Opacity:     1.0,
	}
}

// Merge returns s with any zero-valued field replaced by the
// corresponding field of the fallback.
func (s Style) Merge(fallback Style) Style {
	out := s
	if out.Color == "" {
		out.Color = fallback.Color
	}
	if out.Weight == 0 {
		out.Weight = fallback.Weight
	}
	if out.FillColor == "" {
		out.FillColor = fallback.FillColor
	}
	if out.FillOpacity == 0 {
		out.FillOpacity = fallback.FillOpacity
	}
	if out.Opacity == 0 {
		out.Opacity = fallback.Opacity
	}
	if out.DashArray == "" {
		out.DashArray = fallback.DashArray
	}
	return out
}
