package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchPlace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Cleveland, Ohio" {
			t.Errorf("Expected query 'Cleveland, Ohio', got %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("Expected format json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Nominatim bounding box order is [south, north, west, east]
		w.Write([]byte(`[{"display_name":"Cleveland, Cuyahoga County, Ohio","boundingbox":["41.1","41.6","-81.9","-81.4"]}]`))
	}))
	defer server.Close()

	client := NewClient()
	client.SetEndpoints("", server.URL)

	bbox, displayName, err := client.SearchPlace(context.Background(), "Cleveland, Ohio")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if displayName != "Cleveland, Cuyahoga County, Ohio" {
		t.Errorf("Unexpected display name: %q", displayName)
	}
	expected := "41.100000,-81.900000,41.600000,-81.400000"
	if bbox.String() != expected {
		t.Errorf("Expected bbox %s, got %s", expected, bbox.String())
	}
}

func TestSearchPlaceNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient()
	client.SetEndpoints("", server.URL)

	if _, _, err := client.SearchPlace(context.Background(), "Nowhere At All"); err == nil {
		t.Error("Expected error for empty result set, got none")
	}
}

func TestParseNominatimBBox(t *testing.T) {
	tests := []struct {
		name        string
		values      []string
		expectError bool
	}{
		{name: "Valid", values: []string{"41.1", "41.6", "-81.9", "-81.4"}, expectError: false},
		{name: "Wrong count", values: []string{"41.1", "41.6", "-81.9"}, expectError: true},
		{name: "Non-numeric", values: []string{"a", "41.6", "-81.9", "-81.4"}, expectError: true},
		{name: "Inverted", values: []string{"41.6", "41.1", "-81.9", "-81.4"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseNominatimBBox(tt.values)
			if tt.expectError && err == nil {
				t.Error("Expected error, got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
