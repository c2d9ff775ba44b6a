package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/osmprint/pkg/geo"
	"github.com/NERVsystems/osmprint/pkg/metrics"
	"github.com/NERVsystems/osmprint/pkg/tracing"
)

const (
	// DefaultQueryTimeout is the Overpass server-side query timeout in seconds
	DefaultQueryTimeout = 180

	// Default cache size for Overpass responses
	defaultOverpassCacheSize = 64
)

// Client fetches raw OSM data from the Overpass and Nominatim APIs.
// Responses are cached per query so repeated exports of the same area
// do not hit the services again.
type Client struct {
	logger        *slog.Logger
	overpassURL   string
	nominatimURL  string
	overpassCache *lru.Cache[string, []Element]
	placeCache    *lru.Cache[string, geo.BoundingBox]
}

// NewClient creates a new OSM API client
func NewClient() *Client {
	// Cache creation only fails for non-positive sizes
	oc, _ := lru.New[string, []Element](defaultOverpassCacheSize)
	pc, _ := lru.New[string, geo.BoundingBox](defaultOverpassCacheSize)
	return &Client{
		logger:        slog.Default(),
		overpassURL:   OverpassBaseURL,
		nominatimURL:  NominatimBaseURL,
		overpassCache: oc,
		placeCache:    pc,
	}
}

// SetLogger sets the logger for the client
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetEndpoints overrides the Overpass and Nominatim base URLs.
// Empty strings leave the current values unchanged.
func (c *Client) SetEndpoints(overpassURL, nominatimURL string) {
	if overpassURL != "" {
		c.overpassURL = overpassURL
	}
	if nominatimURL != "" {
		c.nominatimURL = nominatimURL
	}
}

// BuildQuery assembles an Overpass QL query selecting the given filters
// within the bounding box, with embedded geometry output.
func BuildQuery(bbox geo.BoundingBox, filters []string, timeout int) string {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	bboxStr := fmt.Sprintf("%f,%f,%f,%f", bbox.South, bbox.West, bbox.North, bbox.East)

	var query strings.Builder
	query.WriteString(fmt.Sprintf("[out:json][timeout:%d];\n(\n", timeout))
	for _, filter := range filters {
		query.WriteString(fmt.Sprintf("  %s(%s);\n", filter, bboxStr))
	}
	// "out geom" embeds coordinates per element; the trailing recursion
	// picks up referenced nodes as bare skeletons.
	query.WriteString(");\nout geom;\n>;\nout skel qt;\n")
	return query.String()
}

// FetchElements runs an Overpass query for the given bbox and filter set
// and returns the raw elements.
func (c *Client) FetchElements(ctx context.Context, bbox geo.BoundingBox, filters []string) ([]Element, error) {
	ctx, span := tracing.StartSpan(ctx, "osm.fetch_elements")
	defer span.End()

	query := BuildQuery(bbox, filters, DefaultQueryTimeout)

	if cached, ok := c.overpassCache.Get(query); ok {
		metrics.RecordCacheHit(tracing.CacheTypeOverpass)
		span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, true))
		return cached, nil
	}
	metrics.RecordCacheMiss(tracing.CacheTypeOverpass)

	c.logger.Debug("querying overpass", "filters", len(filters), "bbox", bbox.String())

	form := url.Values{"data": {query}}
	req, err := NewRequestWithUserAgent(ctx, "POST", c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := DoRequest(ctx, req)
	if err != nil {
		metrics.RecordExternalServiceRequest(tracing.ServiceOverpass, "interpreter", time.Since(start), false)
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		metrics.RecordExternalServiceRequest(tracing.ServiceOverpass, "interpreter", time.Since(start), false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.RecordExternalServiceRequest(tracing.ServiceOverpass, "interpreter", time.Since(start), false)
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	metrics.RecordExternalServiceRequest(tracing.ServiceOverpass, "interpreter", time.Since(start), true)

	span.SetAttributes(attribute.Int(tracing.AttrElementCount, len(result.Elements)))
	c.logger.Debug("overpass query complete",
		"elements", len(result.Elements),
		"duration", time.Since(start).String())

	c.overpassCache.Add(query, result.Elements)
	return result.Elements, nil
}
