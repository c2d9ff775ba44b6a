// Command osmprint downloads OpenStreetMap features for an area and
// renders them as a print-ready SVG map.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"

	"github.com/NERVsystems/osmprint/pkg/features"
	"github.com/NERVsystems/osmprint/pkg/frame"
	"github.com/NERVsystems/osmprint/pkg/geo"
	"github.com/NERVsystems/osmprint/pkg/osm"
	"github.com/NERVsystems/osmprint/pkg/pipeline"
	"github.com/NERVsystems/osmprint/pkg/svgmap"
	"github.com/NERVsystems/osmprint/pkg/tracing"
	ver "github.com/NERVsystems/osmprint/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	listFeatures    bool
	userAgent       string

	// Area selection flags
	place      string
	bboxStr    string
	printFrame bool

	// Output flags
	paperSize   string
	orientation string
	marginMM    float64
	outPath     string
	geojsonDir  string

	// Feature selection
	featureList string

	// Service endpoint flags
	overpassURL  string
	nominatimURL string

	// Rate limits for each service
	nominatimRPS   float64
	nominatimBurst int
	overpassRPS    float64
	overpassBurst  int

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&listFeatures, "list-features", false, "List available feature categories and exit")
	flag.StringVar(&userAgent, "user-agent", osm.GetUserAgent(), "User-Agent string for OSM API requests")

	// Area selection
	flag.StringVar(&place, "place", "", "Place name to search via Nominatim (e.g. \"Kent, Ohio\")")
	flag.StringVar(&bboxStr, "bbox", "", "Bounding box as south,west,north,east (overrides -place)")
	flag.BoolVar(&printFrame, "frame", false, "Restrict the download to an 11x14 inch print frame centered on the area")

	// Output
	flag.StringVar(&paperSize, "paper", svgmap.DefaultPaperSize,
		"Paper size: "+strings.Join(svgmap.PaperSizes(), ", "))
	flag.StringVar(&orientation, "orientation", "auto", "Page orientation: portrait, landscape, auto")
	flag.Float64Var(&marginMM, "margin", 10, "Page margin in millimeters")
	flag.StringVar(&outPath, "out", "map.svg", "Output SVG path")
	flag.StringVar(&geojsonDir, "geojson-dir", "", "Directory for per-category GeoJSON output (disabled if empty)")

	// Feature selection
	flag.StringVar(&featureList, "features", "all", "Comma-separated category names, or \"all\"")

	// Service endpoints
	flag.StringVar(&overpassURL, "overpass-url", "", "Overpass API endpoint (default public instance)")
	flag.StringVar(&nominatimURL, "nominatim-url", "", "Nominatim API endpoint (default public instance)")

	// Nominatim rate limits
	flag.Float64Var(&nominatimRPS, "nominatim-rps", 1.0, "Nominatim rate limit in requests per second")
	flag.IntVar(&nominatimBurst, "nominatim-burst", 1, "Nominatim rate limit burst size")

	// Overpass rate limits
	flag.Float64Var(&overpassRPS, "overpass-rps", 1.0, "Overpass rate limit in requests per second")
	flag.IntVar(&overpassBurst, "overpass-burst", 1, "Overpass rate limit burst size")

	// Monitoring
	flag.BoolVar(&enableMonitoring, "enable-monitoring", false, "Enable Prometheus metrics endpoint")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address")
}

func main() {
	flag.Parse()

	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	if listFeatures {
		for _, cat := range features.All() {
			fmt.Printf("%-20s %s\n", cat.Name, cat.Display)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing - it's not critical
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
	}

	if userAgent != osm.GetUserAgent() {
		osm.SetUserAgent(userAgent)
	}
	if nominatimRPS != 1.0 || nominatimBurst != 1 {
		osm.UpdateNominatimRateLimits(nominatimRPS, nominatimBurst)
	}
	if overpassRPS != 1.0 || overpassBurst != 1 {
		osm.UpdateOverpassRateLimits(overpassRPS, overpassBurst)
	}

	if enableMonitoring {
		startMonitoringServer(ctx, logger)
	}

	if err := run(ctx, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	client := osm.NewClient()
	client.SetLogger(logger)
	client.SetEndpoints(overpassURL, nominatimURL)

	bbox, areaName, err := resolveArea(ctx, client)
	if err != nil {
		return err
	}
	logger.Info("area resolved", "name", areaName, "bbox", bbox.String())

	if printFrame {
		framed, err := frameBBox(bbox)
		if err != nil {
			return fmt.Errorf("building print frame: %w", err)
		}
		logger.Info("download restricted to print frame",
			"bbox", framed.String(),
			"width_in", frame.WidthInches,
			"height_in", frame.HeightInches)
		bbox = framed
	}

	categories, err := selectCategories(featureList)
	if err != nil {
		return err
	}
	logger.Info("starting download",
		"categories", len(categories),
		"paper", paperSize,
		"orientation", orientation)

	p := pipeline.New(client)
	p.SetLogger(logger)

	bar := progressbar.Default(int64(len(categories)), "downloading")
	results := p.Download(ctx, bbox, categories, func(cat features.Category) {
		bar.Describe(cat.Display)
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	summary := pipeline.Summarize(results)
	logger.Info("download complete",
		"categories", summary.Categories,
		"failed", summary.Failed,
		"features", summary.Features,
		"labels", summary.Labels)
	if summary.Failed == summary.Categories {
		return fmt.Errorf("all %d categories failed to download", summary.Categories)
	}

	if geojsonDir != "" {
		if err := p.WriteGeoJSON(geojsonDir, results); err != nil {
			return fmt.Errorf("writing GeoJSON output: %w", err)
		}
		logger.Info("GeoJSON written", "dir", geojsonDir)
	}

	// Emit the whole document before touching the output file so a
	// failed export never leaves a truncated map behind.
	var buf bytes.Buffer
	if err := p.Export(ctx, &buf, results, bbox, paperSize, orientation, marginMM); err != nil {
		return fmt.Errorf("exporting document: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	logger.Info("map written", "path", outPath, "bytes", buf.Len())
	return nil
}

// resolveArea determines the bounding box from -bbox or -place.
func resolveArea(ctx context.Context, client *osm.Client) (geo.BoundingBox, string, error) {
	if bboxStr != "" {
		bbox, err := geo.ParseBoundingBox(bboxStr)
		if err != nil {
			return geo.BoundingBox{}, "", fmt.Errorf("parsing -bbox: %w", err)
		}
		return bbox, bboxStr, nil
	}
	if place != "" {
		bbox, displayName, err := client.SearchPlace(ctx, place)
		if err != nil {
			return geo.BoundingBox{}, "", fmt.Errorf("searching for %q: %w", place, err)
		}
		return bbox, displayName, nil
	}
	return geo.BoundingBox{}, "", fmt.Errorf("no area given: use -place or -bbox")
}

// frameBBox shrinks or grows the area to the fixed print frame centered
// on its midpoint, using the resolved page orientation.
func frameBBox(bbox geo.BoundingBox) (geo.BoundingBox, error) {
	resolved := orientation
	if resolved == "auto" || resolved == "" {
		corrected := bbox.LonRange() * geo.LatCorrection(bbox.Center().Latitude)
		if bbox.LatRange() > 0 && corrected/bbox.LatRange() > 1 {
			resolved = "landscape"
		} else {
			resolved = "portrait"
		}
	}
	polygon, err := frame.Geometry(bbox, resolved)
	if err != nil {
		return geo.BoundingBox{}, err
	}
	return frame.BBox(polygon), nil
}

// selectCategories parses the -features flag into categories.
func selectCategories(list string) ([]features.Category, error) {
	if list == "" || list == "all" {
		return features.All(), nil
	}

	var selected []features.Category
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cat, ok := features.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature category %q (use -list-features)", name)
		}
		selected = append(selected, cat)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no feature categories selected")
	}
	return selected, nil
}

// startMonitoringServer serves Prometheus metrics until ctx is done.
func startMonitoringServer(ctx context.Context, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              monitoringAddr,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second, // Prevent Slowloris attacks
	}

	go func() {
		logger.Info("starting Prometheus metrics server", "addr", monitoringAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("monitoring server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown monitoring server", "error", err)
		}
	}()
}
