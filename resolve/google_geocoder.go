// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcodagnone/sebaran/utils/httputils"
)

// Provider names accepted by NewGeocoder.
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
)

// GeocoderOptions configures the HTTP geocoders.
type GeocoderOptions struct {
	APIKey string
	// BaseURL overrides the provider endpoint, mostly for tests.
	BaseURL string
	// Region biases results to a country (ccTLD, e.g. "id").
	Region    string
	UserAgent string
	Timeout   time.Duration
	// Trace receives a dump of the HTTP traffic when not nil.
	Trace io.Writer
}

func (o GeocoderOptions) client() *http.Client {
	timeout := o.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return httputils.NewClient(httputils.ClientOptions{
		Timeout:   timeout,
		UserAgent: o.UserAgent,
		Trace:     o.Trace,
	})
}

const googleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	region     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(opts GeocoderOptions) *GoogleMapsGeocoder {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = googleMapsURL
	}

	return &GoogleMapsGeocoder{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		region:     opts.Region,
		httpClient: opts.client(),
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode implements Geocoder.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	if g.region != "" {
		params.Set("region", g.region)
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
		return nil, ClassifyHTTPError(resp.StatusCode, "google maps")
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results found for address: " + address}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: strings.ToLower(gmResp.Status)}
	case "INVALID_REQUEST", "REQUEST_DENIED":
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: gmResp.Status + ": " + gmResp.ErrorMessage}
	default:
		return nil, fmt.Errorf("google maps status: %s", gmResp.Status)
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results found for address: " + address}
	}

	result := gmResp.Results[0]

	confidence := "low"

	switch result.Geometry.LocationType {
	case "ROOFTOP", "RANGE_INTERPOLATED":
		confidence = "high"
	case "GEOMETRIC_CENTER":
		confidence = "medium"
	}

	return &GeocodingResult{
		Latitude:    result.Geometry.Location.Lat,
		Longitude:   result.Geometry.Location.Lng,
		Confidence:  confidence,
		Provider:    "google_maps",
		DisplayName: result.FormattedAddress,
	}, nil
}
