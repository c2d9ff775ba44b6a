package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/osmprint/pkg/features"
	"github.com/NERVsystems/osmprint/pkg/geo"
	"github.com/NERVsystems/osmprint/pkg/geom"
	"github.com/NERVsystems/osmprint/pkg/osm"
	"github.com/NERVsystems/osmprint/pkg/style"
)

func init() {
	// Tests hit a local httptest server; real-service pacing only slows
	// them down.
	osm.UpdateOverpassRateLimits(1000, 1000)
	osm.UpdateNominatimRateLimits(1000, 1000)
}

const waterResponse = `{
	"version": 0.6,
	"generator": "test",
	"elements": [
		{
			"type": "way",
			"id": 100,
			"tags": {"natural": "water", "name": "Test Lake"},
			"geometry": [
				{"lat": 41.1, "lon": -81.4},
				{"lat": 41.1, "lon": -81.2},
				{"lat": 41.3, "lon": -81.2},
				{"lat": 41.3, "lon": -81.4},
				{"lat": 41.1, "lon": -81.4}
			]
		}
	]
}`

const emptyResponse = `{"version": 0.6, "generator": "test", "elements": []}`

func testBBox() geo.BoundingBox {
	return geo.BoundingBox{South: 41.0, West: -81.5, North: 41.6, East: -81.0}
}

func waterCategory() features.Category {
	return features.Category{
		ID:           2,
		Name:         "water_bodies",
		Display:      "Water Bodies & Lakes",
		Filters:      []string{`way["natural"="water"]`},
		Style:        style.Style{Color: "#4682B4", Weight: 1, FillColor: "#87CEEB", FillOpacity: 0.6},
		CreateLabels: true,
	}
}

func roadsCategory() features.Category {
	return features.Category{
		ID:      4,
		Name:    "roads_major",
		Display: "Major Roads",
		Filters: []string{`way["highway"="primary"]`},
		Style:   style.Style{Color: "#FFD700", Weight: 3},
	}
}

// newTestPipeline routes each Overpass query to a canned response keyed
// by a filter substring present in the query body.
func newTestPipeline(t *testing.T, responses map[string]string) *Pipeline {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		query := r.Form.Get("data")
		for needle, body := range responses {
			if strings.Contains(query, needle) {
				if body == "" {
					http.Error(w, "runtime error", http.StatusGatewayTimeout)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emptyResponse))
	}))
	t.Cleanup(server.Close)

	client := osm.NewClient()
	client.SetEndpoints(server.URL, server.URL)
	return New(client)
}

func TestDownloadConvertsAndLabels(t *testing.T) {
	p := newTestPipeline(t, map[string]string{`"natural"="water"`: waterResponse})

	results := p.Download(context.Background(), testBBox(), []features.Category{waterCategory()}, nil)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Err != nil {
		t.Fatalf("Unexpected error: %v", r.Err)
	}
	if r.Elements != 1 {
		t.Errorf("Expected 1 raw element, got %d", r.Elements)
	}
	if len(r.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(r.Features))
	}
	if _, ok := r.Features[0].Geometry.(orb.Polygon); !ok {
		t.Errorf("Expected closed water way promoted to Polygon, got %T", r.Features[0].Geometry)
	}
	if r.Features[0].Style == nil || r.Features[0].Style.FillColor != "#87CEEB" {
		t.Error("Expected category style injected into feature")
	}
	if len(r.Labels) != 1 {
		t.Fatalf("Expected 1 label for named water feature, got %d", len(r.Labels))
	}
	if r.Labels[0].Name() != "Test Lake" {
		t.Errorf("Expected label 'Test Lake', got %q", r.Labels[0].Name())
	}
}

func TestDownloadIsolatesCategoryFailures(t *testing.T) {
	p := newTestPipeline(t, map[string]string{
		`"highway"="primary"`: "", // served as an upstream error
		`"natural"="water"`:   waterResponse,
	})

	var completed []string
	progress := func(cat features.Category) { completed = append(completed, cat.Name) }

	results := p.Download(context.Background(), testBBox(), []features.Category{roadsCategory(), waterCategory()}, progress)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	if results[0].Err == nil {
		t.Error("Expected roads category to fail")
	}
	if results[1].Err != nil {
		t.Errorf("Expected water category to survive the roads failure, got: %v", results[1].Err)
	}
	if len(results[1].Features) != 1 {
		t.Errorf("Expected 1 water feature, got %d", len(results[1].Features))
	}

	if len(completed) != 2 || completed[0] != "roads_major" || completed[1] != "water_bodies" {
		t.Errorf("Expected progress for every category including failures, got %v", completed)
	}
}

func TestLayersSkipsFailedAndEmpty(t *testing.T) {
	results := []LayerResult{
		{Category: waterCategory(), Features: []geom.Feature{{Geometry: orb.Point{-81.3, 41.2}}}},
		{Category: roadsCategory(), Err: context.DeadlineExceeded},
		{Category: features.Category{Name: "buildings"}},
	}

	layers := Layers(results)
	if len(layers) != 1 {
		t.Fatalf("Expected 1 layer, got %d", len(layers))
	}
	if layers[0].Name != "water_bodies" {
		t.Errorf("Expected water_bodies layer, got %q", layers[0].Name)
	}
	if !layers[0].Labeled {
		t.Error("Expected label flag carried from the category")
	}
}

func TestExportProducesDocument(t *testing.T) {
	p := newTestPipeline(t, map[string]string{`"natural"="water"`: waterResponse})
	results := p.Download(context.Background(), testBBox(), []features.Category{waterCategory()}, nil)

	var buf bytes.Buffer
	if err := p.Export(context.Background(), &buf, results, testBBox(), "Letter", "portrait", 10); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("Expected an SVG document")
	}
	if !strings.Contains(out, `id="water_bodies"`) {
		t.Error("Expected water_bodies layer group")
	}
	if !strings.Contains(out, "Test Lake") {
		t.Error("Expected lake label in document")
	}
}

func TestExportRejectsInvalidBBox(t *testing.T) {
	p := New(osm.NewClient())
	var buf bytes.Buffer
	bad := geo.BoundingBox{South: 42.0, West: -81.5, North: 41.0, East: -81.0}
	if err := p.Export(context.Background(), &buf, nil, bad, "A4", "portrait", 10); err == nil {
		t.Error("Expected error for invalid bbox")
	}
}

func TestWriteGeoJSON(t *testing.T) {
	p := newTestPipeline(t, map[string]string{`"natural"="water"`: waterResponse})
	results := p.Download(context.Background(), testBBox(), []features.Category{waterCategory()}, nil)

	dir := t.TempDir()
	if err := p.WriteGeoJSON(dir, results); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, name := range []string{"water_bodies.geojson", "water_bodies_labels.geojson"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", name, err)
		}
		var fc struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			t.Fatalf("Expected valid GeoJSON in %s: %v", name, err)
		}
		if fc.Type != "FeatureCollection" {
			t.Errorf("%s: expected FeatureCollection, got %q", name, fc.Type)
		}
		if len(fc.Features) != 1 {
			t.Errorf("%s: expected 1 feature, got %d", name, len(fc.Features))
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []LayerResult{
		{Category: waterCategory(), Features: make([]geom.Feature, 3), Labels: make([]geom.Feature, 2)},
		{Category: roadsCategory(), Features: make([]geom.Feature, 5)},
		{Category: features.Category{Name: "railways"}, Err: context.DeadlineExceeded},
	}

	s := Summarize(results)
	if s.Categories != 3 || s.Failed != 1 || s.Features != 8 || s.Labels != 2 {
		t.Errorf("Unexpected summary: %+v", s)
	}
}
