// Package svgmap projects WGS84 features onto a physical page and emits
// the styled SVG document.
package svgmap

import (
	"fmt"
	"log/slog"

	"github.com/NERVsystems/osmprint/pkg/geo"
)

// MMToPx converts millimeters to pixels at 96 DPI equivalence.
const MMToPx = 3.7795

// DefaultPaperSize is used when an unknown paper size is requested.
// Unknown sizes fall back silently instead of erroring; bad bounding
// boxes do not.
const DefaultPaperSize = "A4"

// paperSizes maps paper size names to (width, height) in millimeters,
// portrait orientation.
var paperSizes = map[string][2]float64{
	"A4":      {210, 297},
	"A3":      {297, 420},
	"Letter":  {216, 279},
	"Tabloid": {279, 432},
}

// PaperSizes returns the supported paper size names.
func PaperSizes() []string {
	return []string{"A4", "A3", "Letter", "Tabloid"}
}

// Projector maps WGS84 coordinates onto page pixels for one export. It
// is constructed once per export call and immutable afterwards; every
// feature coordinate of the export reuses the same instance.
type Projector struct {
	bbox geo.BoundingBox

	// Resolved configuration
	PaperSize   string
	Orientation string

	// Page dimensions
	PageWidthMM  float64
	PageHeightMM float64
	Width        float64 // page width in px
	Height       float64 // page height in px

	marginPx   float64
	drawWidth  float64 // content area width in px
	drawHeight float64 // content area height in px

	// Uniform degree-to-pixel scale and centering offsets. The bbox is
	// fit inside the content area preserving the latitude-corrected
	// ground aspect; the non-binding axis splits its unused space
	// evenly around the drawing.
	scale        float64
	actualWidth  float64
	actualHeight float64
	xOffset      float64
	yOffset      float64

	lonRange float64
	latRange float64
}

// NewProjector creates the page projection for one export.
// The bounding box must be valid; unknown paper sizes fall back to A4.
// Orientation is "portrait", "landscape", or "auto" (landscape when the
// latitude-corrected aspect ratio exceeds 1).
func NewProjector(bbox geo.BoundingBox, paperSize, orientation string, marginMM float64) (*Projector, error) {
	if err := bbox.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bbox for projection: %w", err)
	}

	dims, ok := paperSizes[paperSize]
	if !ok {
		slog.Default().Debug("unknown paper size, falling back", "requested", paperSize, "fallback", DefaultPaperSize)
		paperSize = DefaultPaperSize
		dims = paperSizes[paperSize]
	}
	paperW, paperH := dims[0], dims[1]

	p := &Projector{
		bbox:      bbox,
		PaperSize: paperSize,
		lonRange:  bbox.LonRange(),
		latRange:  bbox.LatRange(),
	}

	// Longitude degrees are shorter than latitude degrees away from the
	// equator; correct the longitude extent so the aspect ratio compares
	// ground distances.
	correctedLonRange := p.lonRange * geo.LatCorrection(bbox.Center().Latitude)

	bboxAspect := 1.0
	if p.latRange > 0 {
		bboxAspect = correctedLonRange / p.latRange
	}

	if orientation == "auto" || orientation == "" {
		if bboxAspect > 1 {
			orientation = "landscape"
		} else {
			orientation = "portrait"
		}
	}
	p.Orientation = orientation

	if orientation == "landscape" {
		p.PageWidthMM = max(paperW, paperH)
		p.PageHeightMM = min(paperW, paperH)
	} else {
		p.PageWidthMM = min(paperW, paperH)
		p.PageHeightMM = max(paperW, paperH)
	}

	contentWidthMM := p.PageWidthMM - 2*marginMM
	contentHeightMM := p.PageHeightMM - 2*marginMM

	p.Width = p.PageWidthMM * MMToPx
	p.Height = p.PageHeightMM * MMToPx
	p.marginPx = marginMM * MMToPx
	p.drawWidth = contentWidthMM * MMToPx
	p.drawHeight = contentHeightMM * MMToPx

	contentAspect := p.drawWidth / p.drawHeight

	if bboxAspect > contentAspect {
		// Width is the binding constraint
		p.scale = p.drawWidth / correctedLonRange
		p.actualWidth = p.drawWidth
		p.actualHeight = p.latRange * p.scale
		p.xOffset = p.marginPx
		p.yOffset = p.marginPx + (p.drawHeight-p.actualHeight)/2
	} else {
		// Height is the binding constraint
		p.scale = p.drawHeight / p.latRange
		p.actualHeight = p.drawHeight
		p.actualWidth = correctedLonRange * p.scale
		p.yOffset = p.marginPx
		p.xOffset = p.marginPx + (p.drawWidth-p.actualWidth)/2
	}

	slog.Default().Debug("page projection ready",
		"paper", paperSize,
		"orientation", orientation,
		"bbox_aspect", fmt.Sprintf("%.2f", bboxAspect),
		"scale", fmt.Sprintf("%.2f", p.scale),
		"size_px", fmt.Sprintf("%.0fx%.0f", p.Width, p.Height))

	return p, nil
}

// Project converts a WGS84 coordinate to page pixel coordinates. The y
// axis is inverted: page coordinates increase downward while latitude
// increases northward.
func (p *Projector) Project(lon, lat float64) (x, y float64) {
	normX := 0.0
	if p.lonRange > 0 {
		normX = (lon - p.bbox.West) / p.lonRange
	}
	normY := 0.0
	if p.latRange > 0 {
		normY = (p.bbox.North - lat) / p.latRange
	}

	x = p.xOffset + normX*p.actualWidth
	y = p.yOffset + normY*p.actualHeight
	return x, y
}

// BBox returns the bounding box this projector was built for.
func (p *Projector) BBox() geo.BoundingBox { return p.bbox }

// MarginPx returns the page margin in pixels.
func (p *Projector) MarginPx() float64 { return p.marginPx }

// DrawArea returns the content area dimensions in pixels.
func (p *Projector) DrawArea() (width, height float64) {
	return p.drawWidth, p.drawHeight
}
