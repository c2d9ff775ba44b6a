package svgmap

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"

	"github.com/NERVsystems/osmprint/pkg/geom"
	"github.com/NERVsystems/osmprint/pkg/metrics"
	"github.com/NERVsystems/osmprint/pkg/style"
)

// Label text styling. The white outline under the black fill keeps
// names readable over any feature color.
const (
	labelFontSize    = "10"
	labelFontFamily  = "Arial, sans-serif"
	labelFill        = "#000000"
	labelHaloColor   = "#FFFFFF"
	labelHaloWidth   = "3"
	labelPaintOrder  = "stroke fill"
	pointRadius      = "3"
	holeFillColor    = "#FFFFFF"
	backgroundColor  = "#FFFFFF"
	minStrokeWidthPx = 1.0
)

// waterKeywords mark layer names whose features get labels even when
// the layer was not explicitly flagged for labeling.
var waterKeywords = []string{"water", "lake", "bay"}

// Layer is one named group of features drawn into the document.
type Layer struct {
	Name     string
	Features []geom.Feature

	// Labeled forces label emission for this layer. Layers whose name
	// contains a water keyword are labeled regardless.
	Labeled bool
}

// labelEligible reports whether the layer's named features get labels.
func (l Layer) labelEligible() bool {
	if l.Labeled {
		return true
	}
	lower := strings.ToLower(l.Name)
	for _, kw := range waterKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Emitter renders projected feature layers into an SVG document.
type Emitter struct {
	logger *slog.Logger
}

// NewEmitter creates an emitter with the default logger.
func NewEmitter() *Emitter {
	return &Emitter{logger: slog.Default()}
}

// SetLogger sets the logger used during emission.
func (e *Emitter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Document builds the SVG document for the given layers. Features that
// cannot be rendered are skipped individually; a bad feature never
// aborts its layer or the document.
func (e *Emitter) Document(layers []Layer, p *Projector) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("width", fmt.Sprintf("%.0fmm", p.PageWidthMM))
	svg.CreateAttr("height", fmt.Sprintf("%.0fmm", p.PageHeightMM))
	svg.CreateAttr("viewBox", fmt.Sprintf("0 0 %.0f %.0f", p.Width, p.Height))

	background := svg.CreateElement("rect")
	background.CreateAttr("x", "0")
	background.CreateAttr("y", "0")
	background.CreateAttr("width", fmtNum(p.Width))
	background.CreateAttr("height", fmtNum(p.Height))
	background.CreateAttr("fill", backgroundColor)

	featuresGroup := svg.CreateElement("g")
	featuresGroup.CreateAttr("id", "features")
	labelsGroup := svg.CreateElement("g")
	labelsGroup.CreateAttr("id", "labels")

	registry := NewLabelRegistry()

	for _, layer := range layers {
		layerGroup := featuresGroup.CreateElement("g")
		layerGroup.CreateAttr("id", sanitizeID(layer.Name))
		layerGroup.CreateAttr("class", "layer")

		drawn := 0
		for _, f := range layer.Features {
			if !e.addFeature(layerGroup, labelsGroup, f, layer, p, registry) {
				e.logger.Warn("skipping unrenderable feature",
					"layer", layer.Name,
					"geometry", geometryKind(f.Geometry))
				metrics.RecordError("svgmap", "unrenderable_feature")
				continue
			}
			drawn++
		}

		e.logger.Debug("layer rendered",
			"layer", layer.Name,
			"features", drawn,
			"skipped", len(layer.Features)-drawn)
	}

	return doc
}

// Export writes the document for the given layers to w.
func (e *Emitter) Export(w io.Writer, layers []Layer, p *Projector) error {
	start := time.Now()

	doc := e.Document(layers, p)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		metrics.RecordError("svgmap", "write_failed")
		return fmt.Errorf("writing SVG document: %w", err)
	}

	metrics.RecordExport(p.PaperSize, time.Since(start))
	e.logger.Info("document exported",
		"paper", p.PaperSize,
		"orientation", p.Orientation,
		"layers", len(layers),
		"duration", time.Since(start))
	return nil
}

// addFeature renders one feature into the layer group and, when the
// layer is label-eligible, its label into the labels group. It returns
// false when the geometry kind is unsupported or empty.
func (e *Emitter) addFeature(layerGroup, labelsGroup *etree.Element, f geom.Feature, layer Layer, p *Projector, registry *LabelRegistry) bool {
	st := style.Default()
	if f.Style != nil {
		st = f.Style.Merge(st)
	}

	anchor := ""
	switch g := f.Geometry.(type) {
	case orb.Point:
		e.addPoint(layerGroup, g, st, p)
		anchor = "start"
	case orb.LineString:
		if len(g) < 2 {
			return false
		}
		e.addLine(layerGroup, g, st, p)
	case orb.MultiLineString:
		if len(g) == 0 {
			return false
		}
		for _, part := range g {
			if len(part) >= 2 {
				e.addLine(layerGroup, part, st, p)
			}
		}
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return false
		}
		e.addPolygon(layerGroup, g, st, p)
		anchor = "middle"
	case orb.MultiPolygon:
		if len(g) == 0 {
			return false
		}
		for _, part := range g {
			if len(part) > 0 && len(part[0]) > 0 {
				e.addPolygon(layerGroup, part, st, p)
			}
		}
		anchor = "middle"
	default:
		return false
	}

	// Lines are never labeled; their names clutter a print.
	if anchor != "" && layer.labelEligible() {
		e.addLabel(labelsGroup, f, anchor, p, registry)
	}
	return true
}

func (e *Emitter) addPoint(parent *etree.Element, pt orb.Point, st style.Style, p *Projector) {
	x, y := p.Project(pt[0], pt[1])
	circle := parent.CreateElement("circle")
	circle.CreateAttr("cx", fmtCoord(x))
	circle.CreateAttr("cy", fmtCoord(y))
	circle.CreateAttr("r", pointRadius)
	circle.CreateAttr("fill", st.Color)
	circle.CreateAttr("stroke", "#000000")
	circle.CreateAttr("stroke-width", "1")
}

func (e *Emitter) addLine(parent *etree.Element, line orb.LineString, st style.Style, p *Projector) {
	path := parent.CreateElement("path")
	path.CreateAttr("d", linePath(line, p))
	path.CreateAttr("fill", "none")
	path.CreateAttr("stroke", st.Color)
	path.CreateAttr("stroke-width", fmtNum(max(st.Weight, minStrokeWidthPx)))
	path.CreateAttr("stroke-opacity", fmtNum(st.Opacity))
	if st.DashArray != "" {
		path.CreateAttr("stroke-dasharray", st.DashArray)
	}
}

// addPolygon draws the outer ring as a filled path and each hole as a
// separate background-colored path on top of it.
func (e *Emitter) addPolygon(parent *etree.Element, polygon orb.Polygon, st style.Style, p *Projector) {
	outer := parent.CreateElement("path")
	outer.CreateAttr("d", ringPath(polygon[0], p))
	outer.CreateAttr("fill", st.FillColor)
	outer.CreateAttr("fill-opacity", fmtNum(st.FillOpacity))
	outer.CreateAttr("stroke", st.Color)
	outer.CreateAttr("stroke-width", fmtNum(max(st.Weight, minStrokeWidthPx)))
	outer.CreateAttr("stroke-opacity", fmtNum(st.Opacity))
	if st.DashArray != "" {
		outer.CreateAttr("stroke-dasharray", st.DashArray)
	}

	for _, hole := range polygon[1:] {
		if len(hole) == 0 {
			continue
		}
		holePath := parent.CreateElement("path")
		holePath.CreateAttr("d", ringPath(hole, p))
		holePath.CreateAttr("fill", holeFillColor)
		holePath.CreateAttr("fill-opacity", "1")
		holePath.CreateAttr("stroke", "none")
	}
}

// addLabel emits a halo text element at the feature's representative
// point, once per name per document.
func (e *Emitter) addLabel(labelsGroup *etree.Element, f geom.Feature, anchor string, p *Projector, registry *LabelRegistry) {
	name := f.Name()
	if name == "" {
		return
	}
	pt, ok := geom.RepresentativePoint(f.Geometry)
	if !ok {
		return
	}
	if !registry.Claim(name) {
		metrics.LabelsDedupedTotal.Inc()
		return
	}

	x, y := p.Project(pt[0], pt[1])
	text := labelsGroup.CreateElement("text")
	text.CreateAttr("x", fmtCoord(x))
	text.CreateAttr("y", fmtCoord(y))
	text.CreateAttr("font-size", labelFontSize)
	text.CreateAttr("font-family", labelFontFamily)
	text.CreateAttr("font-weight", "normal")
	text.CreateAttr("fill", labelFill)
	text.CreateAttr("stroke", labelHaloColor)
	text.CreateAttr("stroke-width", labelHaloWidth)
	text.CreateAttr("paint-order", labelPaintOrder)
	text.CreateAttr("text-anchor", anchor)
	text.SetText(name)

	metrics.LabelsEmittedTotal.Inc()
}

// linePath builds an SVG path string ("M x,y L x,y ...") from a line.
func linePath(line orb.LineString, p *Projector) string {
	var b strings.Builder
	for i, pt := range line {
		x, y := p.Project(pt[0], pt[1])
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(fmtCoord(x))
		b.WriteByte(',')
		b.WriteString(fmtCoord(y))
	}
	return b.String()
}

// ringPath builds a closed SVG path string from a ring.
func ringPath(ring orb.Ring, p *Projector) string {
	return linePath(orb.LineString(ring), p) + " Z"
}

// sanitizeID turns a layer name into a usable XML id.
func sanitizeID(name string) string {
	return strings.NewReplacer(" ", "_", "&", "and").Replace(name)
}

func geometryKind(g orb.Geometry) string {
	if g == nil {
		return "nil"
	}
	return g.GeoJSONType()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
