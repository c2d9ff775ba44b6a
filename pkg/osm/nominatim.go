package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/NERVsystems/osmprint/pkg/geo"
	"github.com/NERVsystems/osmprint/pkg/metrics"
	"github.com/NERVsystems/osmprint/pkg/tracing"
)

// nominatimResult is a single Nominatim search result. The bounding box
// values arrive as strings in [south, north, west, east] order.
type nominatimResult struct {
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// SearchPlace resolves a place name to a bounding box via Nominatim.
// It returns the box and the resolved display name.
func (c *Client) SearchPlace(ctx context.Context, placeName string) (geo.BoundingBox, string, error) {
	ctx, span := tracing.StartSpan(ctx, "osm.search_place")
	defer span.End()

	if cached, ok := c.placeCache.Get(placeName); ok {
		metrics.RecordCacheHit(tracing.CacheTypeNominatim)
		return cached, placeName, nil
	}
	metrics.RecordCacheMiss(tracing.CacheTypeNominatim)

	c.logger.Info("searching for place", "query", placeName)

	params := url.Values{
		"q":               {placeName},
		"format":          {"json"},
		"limit":           {"1"},
		"polygon_geojson": {"1"},
	}
	searchURL := c.nominatimURL + "/search?" + params.Encode()

	req, err := NewRequestWithUserAgent(ctx, "GET", searchURL, nil)
	if err != nil {
		return geo.BoundingBox{}, "", fmt.Errorf("failed to create nominatim request: %w", err)
	}

	start := time.Now()
	resp, err := DoRequest(ctx, req)
	if err != nil {
		metrics.RecordExternalServiceRequest(tracing.ServiceNominatim, "search", time.Since(start), false)
		tracing.RecordError(ctx, err)
		return geo.BoundingBox{}, "", fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		metrics.RecordExternalServiceRequest(tracing.ServiceNominatim, "search", time.Since(start), false)
		return geo.BoundingBox{}, "", fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.RecordExternalServiceRequest(tracing.ServiceNominatim, "search", time.Since(start), false)
		return geo.BoundingBox{}, "", fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	metrics.RecordExternalServiceRequest(tracing.ServiceNominatim, "search", time.Since(start), true)

	if len(results) == 0 {
		return geo.BoundingBox{}, "", fmt.Errorf("no results found for %q", placeName)
	}

	result := results[0]
	bbox, err := parseNominatimBBox(result.BoundingBox)
	if err != nil {
		return geo.BoundingBox{}, "", fmt.Errorf("invalid bounding box for %q: %w", placeName, err)
	}

	c.logger.Info("found place", "display_name", result.DisplayName, "bbox", bbox.String())
	c.placeCache.Add(placeName, bbox)
	return bbox, result.DisplayName, nil
}

// parseNominatimBBox converts Nominatim's [south, north, west, east]
// string array into a validated BoundingBox.
func parseNominatimBBox(values []string) (geo.BoundingBox, error) {
	if len(values) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("expected 4 bounding box values, got %d", len(values))
	}
	parsed := make([]float64, 4)
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("invalid bounding box value %q: %w", v, err)
		}
		parsed[i] = f
	}
	south, north, west, east := parsed[0], parsed[1], parsed[2], parsed[3]
	return geo.NewBoundingBox(south, west, north, east)
}
