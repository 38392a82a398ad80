// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API. Its usage
// policy allows one request per second and requires a descriptive
// User-Agent, so it is meant to be wrapped by RateLimitedGeocoder.
type NominatimGeocoder struct {
	baseURL    string
	region     string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder.
func NewNominatimGeocoder(opts GeocoderOptions) *NominatimGeocoder {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = nominatimURL
	}

	return &NominatimGeocoder{
		baseURL:    baseURL,
		region:     opts.Region,
		httpClient: opts.client(),
	}
}

type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
	AddressType string  `json:"addresstype"`
}

// Geocode implements Geocoder.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	if g.region != "" {
		params.Set("countrycodes", g.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, "nominatim")
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(places) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results found for address: " + address}
	}

	place := places[0]

	res := ParseLocation(place.Lat + "," + place.Lon)

	p, ok := res.Point()
	if !ok {
		return nil, fmt.Errorf("nominatim returned unparseable coordinates %q,%q", place.Lat, place.Lon)
	}

	return &GeocodingResult{
		Latitude:    p.Lat,
		Longitude:   p.Lng,
		Confidence:  nominatimConfidence(place),
		Provider:    ProviderNominatim,
		DisplayName: place.DisplayName,
	}, nil
}

// Nominatim has no location type; importance and the kind of place are the
// closest signal.
func nominatimConfidence(p nominatimPlace) string {
	switch p.AddressType {
	case "house", "building", "road":
		return "high"
	case "postcode", "village", "suburb", "neighbourhood", "quarter":
		return "medium"
	}

	if p.Importance >= 0.5 {
		return "medium"
	}

	return "low"
}
