// Package pipeline orchestrates a full map production run: fetching
// each feature category from Overpass, converting elements to geometry
// features, deriving label layers, and handing the result to the
// document emitter.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/osmprint/pkg/features"
	"github.com/NERVsystems/osmprint/pkg/geo"
	"github.com/NERVsystems/osmprint/pkg/geom"
	"github.com/NERVsystems/osmprint/pkg/metrics"
	"github.com/NERVsystems/osmprint/pkg/osm"
	"github.com/NERVsystems/osmprint/pkg/svgmap"
	"github.com/NERVsystems/osmprint/pkg/tracing"
)

// LayerResult is the outcome of one category's download and conversion.
// A failed category carries its error; the other categories are
// unaffected.
type LayerResult struct {
	Category features.Category
	Features []geom.Feature
	Labels   []geom.Feature
	Elements int
	Err      error
}

// Pipeline runs category downloads and document exports.
type Pipeline struct {
	logger  *slog.Logger
	client  *osm.Client
	builder *geom.Builder
}

// New creates a pipeline around an OSM client.
func New(client *osm.Client) *Pipeline {
	return &Pipeline{
		logger:  slog.Default(),
		client:  client,
		builder: geom.NewBuilder(),
	}
}

// SetLogger sets the logger used by the pipeline and its builder.
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
		p.builder.SetLogger(logger)
	}
}

// Download fetches and converts every category within the bbox. One
// category failing does not stop the others; the error is recorded on
// its result. The progress callback, if non-nil, is invoked after each
// category completes.
func (p *Pipeline) Download(ctx context.Context, bbox geo.BoundingBox, categories []features.Category, progress func(features.Category)) []LayerResult {
	results := make([]LayerResult, 0, len(categories))

	for _, cat := range categories {
		result := p.downloadCategory(ctx, bbox, cat)
		if result.Err != nil {
			p.logger.Error("category download failed",
				"category", cat.Name,
				"error", result.Err)
			metrics.RecordError("pipeline", "category_failed")
		} else {
			p.logger.Info("category downloaded",
				"category", cat.Name,
				"elements", result.Elements,
				"features", len(result.Features),
				"labels", len(result.Labels))
		}
		results = append(results, result)
		if progress != nil {
			progress(cat)
		}
	}

	return results
}

func (p *Pipeline) downloadCategory(ctx context.Context, bbox geo.BoundingBox, cat features.Category) LayerResult {
	ctx, span := tracing.StartSpan(ctx, "pipeline.downloadCategory")
	defer span.End()
	tracing.SetAttributes(ctx, attribute.String(tracing.AttrCategoryName, cat.Name))

	result := LayerResult{Category: cat}

	elements, err := p.client.FetchElements(ctx, bbox, cat.Filters)
	if err != nil {
		result.Err = fmt.Errorf("fetching %s: %w", cat.Name, err)
		tracing.RecordError(ctx, result.Err)
		return result
	}
	result.Elements = len(elements)

	converted := p.builder.Build(elements, geom.Options{
		IncludePoints: cat.IncludePoints(),
		LineOnly:      cat.LineOnly(),
		Category:      cat.Name,
	})

	// Each feature carries the category style so the emitter and the
	// GeoJSON side output both see it.
	for i := range converted {
		if converted[i].Style == nil {
			st := cat.Style
			converted[i].Style = &st
		}
	}
	result.Features = converted

	if cat.CreateLabels {
		result.Labels = geom.LabelPoints(converted)
	}

	tracing.SetAttributes(ctx, tracing.CategoryAttributes(cat.Name, len(elements), len(converted))...)
	return result
}

// Layers converts download results into document layers, skipping
// failed and empty categories.
func Layers(results []LayerResult) []svgmap.Layer {
	layers := make([]svgmap.Layer, 0, len(results))
	for _, r := range results {
		if r.Err != nil || len(r.Features) == 0 {
			continue
		}
		layers = append(layers, svgmap.Layer{
			Name:     r.Category.Name,
			Features: r.Features,
			Labeled:  r.Category.CreateLabels,
		})
	}
	return layers
}

// Export projects the result layers onto the page and writes the SVG
// document to w.
func (p *Pipeline) Export(ctx context.Context, w io.Writer, results []LayerResult, bbox geo.BoundingBox, paperSize, orientation string, marginMM float64) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Export")
	defer span.End()

	projector, err := svgmap.NewProjector(bbox, paperSize, orientation, marginMM)
	if err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	tracing.SetAttributes(ctx,
		attribute.String(tracing.AttrPaperSize, projector.PaperSize),
		attribute.String(tracing.AttrOrientation, projector.Orientation),
	)

	emitter := svgmap.NewEmitter()
	emitter.SetLogger(p.logger)
	if err := emitter.Export(w, Layers(results), projector); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}
	return nil
}

// WriteGeoJSON writes each successful category's features (and labels,
// when present) as GeoJSON files under dir.
func (p *Pipeline) WriteGeoJSON(dir string, results []LayerResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, r := range results {
		if r.Err != nil || len(r.Features) == 0 {
			continue
		}
		if err := writeCollection(filepath.Join(dir, r.Category.Name+".geojson"), r.Features); err != nil {
			return err
		}
		if len(r.Labels) > 0 {
			if err := writeCollection(filepath.Join(dir, r.Category.Name+"_labels.geojson"), r.Labels); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCollection(path string, fs []geom.Feature) error {
	data, err := json.MarshalIndent(geom.ToGeoJSON(fs), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Summary aggregates run results for the final log line.
type Summary struct {
	Categories int
	Failed     int
	Features   int
	Labels     int
}

// Summarize tallies the results of a download run.
func Summarize(results []LayerResult) Summary {
	s := Summary{Categories: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Features += len(r.Features)
		s.Labels += len(r.Labels)
	}
	return s
}
