// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcodagnone/sebaran/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder(t *testing.T) {
	var gotUA, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")

		switch r.URL.Query().Get("q") {
		case "Jl. Sudirman 1, Jakarta":
			fmt.Fprint(w, `[{"lat":"-6.2088","lon":"106.8456","display_name":"Sudirman","importance":0.3,"addresstype":"road"}]`)
		case "busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(GeocoderOptions{BaseURL: srv.URL, UserAgent: "sebaran-test/1.0", Region: "id"})

	got, err := g.Geocode(context.Background(), "Jl. Sudirman 1, Jakarta")
	require.NoError(t, err)
	assert.Equal(t, "sebaran-test/1.0", gotUA)
	assert.Equal(t, "Jl. Sudirman 1, Jakarta", gotQuery)
	assert.InDelta(t, -6.2088, got.Latitude, 1e-9)
	assert.InDelta(t, 106.8456, got.Longitude, 1e-9)
	assert.Equal(t, "high", got.Confidence)
	assert.Equal(t, ProviderNominatim, got.Provider)

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.True(t, IsNotFoundError(err), "got %v", err)

	_, err = g.Geocode(context.Background(), "busy")
	assert.True(t, IsRateLimitError(err), "got %v", err)
}

func TestGoogleMapsGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)

			return
		}

		switch r.URL.Query().Get("address") {
		case "Monas":
			fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Monas, Jakarta",
				"geometry":{"location":{"lat":-6.1754,"lng":106.8272},"location_type":"GEOMETRIC_CENTER"}}]}`)
		case "over":
			fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT"}`)
		default:
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
		}
	}))
	defer srv.Close()

	g := NewGoogleMapsGeocoder(GeocoderOptions{APIKey: "secret", BaseURL: srv.URL})

	got, err := g.Geocode(context.Background(), "Monas")
	require.NoError(t, err)
	assert.InDelta(t, -6.1754, got.Latitude, 1e-9)
	assert.Equal(t, "medium", got.Confidence)
	assert.Equal(t, "Monas, Jakarta", got.DisplayName)

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.True(t, IsNotFoundError(err), "got %v", err)

	_, err = g.Geocode(context.Background(), "over")
	assert.True(t, IsQuotaExceededError(err), "got %v", err)

	bad := NewGoogleMapsGeocoder(GeocoderOptions{APIKey: "wrong", BaseURL: srv.URL})
	_, err = bad.Geocode(context.Background(), "Monas")

	var geoErr *GeocodingError
	require.ErrorAs(t, err, &geoErr)
	assert.Equal(t, ErrorTypeInvalidRequest, geoErr.Type)
}

type fakeGeocoder struct {
	calls atomic.Int32
	fn    func(address string) (*GeocodingResult, error)
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (*GeocodingResult, error) {
	f.calls.Add(1)

	return f.fn(address)
}

func TestGeocodeAddress(t *testing.T) {
	g := &fakeGeocoder{fn: func(address string) (*GeocodingResult, error) {
		switch address {
		case "ok":
			return &GeocodingResult{Latitude: -6.2, Longitude: 106.8, Provider: "fake"}, nil
		case "error":
			return nil, errors.New("boom")
		case "nil":
			return nil, nil
		case "missing":
			return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results"}
		case "throttled":
			return nil, ClassifyHTTPError(http.StatusTooManyRequests, "nominatim")
		case "quota":
			return nil, ClassifyHTTPError(http.StatusForbidden, "google")
		case "out of range":
			return &GeocodingResult{Latitude: 120, Longitude: 0, Provider: "fake"}, nil
		default:
			panic("unexpected")
		}
	}}

	tests := []struct {
		address  string
		want     spatial.Point
		reason   Reason
		provider string
	}{
		{"ok", spatial.Point{Lat: -6.2, Lng: 106.8}, ReasonNone, "fake"},
		{"", spatial.Point{}, ReasonEmpty, ""},
		{"error", spatial.Point{}, ReasonGeocoderFailed, ""},
		{"nil", spatial.Point{}, ReasonGeocoderFailed, ""},
		{"missing", spatial.Point{}, ReasonGeocoderFailed, ""},
		{"throttled", spatial.Point{}, ReasonGeocoderUnavailable, ""},
		{"quota", spatial.Point{}, ReasonGeocoderUnavailable, ""},
		{"out of range", spatial.Point{}, ReasonGeocoderFailed, "fake"},
		{"panic", spatial.Point{}, ReasonGeocoderFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			res, found := GeocodeAddress(context.Background(), g, tt.address)
			assert.Equal(t, tt.reason, res.Reason())

			provider := ""
			if found != nil {
				provider = found.Provider
			}

			assert.Equal(t, tt.provider, provider)

			p, _ := res.Point()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestGeocodeAddressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := &fakeGeocoder{fn: func(string) (*GeocodingResult, error) {
		cancel()

		return nil, errors.New("request aborted")
	}}

	res, found := GeocodeAddress(ctx, g, "Jl. Merdeka 1, Bandung")
	assert.Nil(t, found)
	assert.Equal(t, ReasonGeocoderUnavailable, res.Reason())
	assert.True(t, res.Reason().Transient())
	assert.False(t, ReasonGeocoderFailed.Transient())
}

func TestRateLimitedGeocoder(t *testing.T) {
	inner := &fakeGeocoder{fn: func(string) (*GeocodingResult, error) {
		return &GeocodingResult{Latitude: 1, Longitude: 1}, nil
	}}

	g := NewRateLimitedGeocoder(inner, 50*time.Millisecond)

	start := time.Now()

	for range 3 {
		_, err := g.Geocode(context.Background(), "x")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestRateLimitedGeocoderCancelled(t *testing.T) {
	inner := &fakeGeocoder{fn: func(string) (*GeocodingResult, error) {
		return &GeocodingResult{}, nil
	}}

	g := NewRateLimitedGeocoder(inner, time.Hour)

	_, err := g.Geocode(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Geocode(ctx, "second")
	assert.True(t, IsTimeoutError(err), "got %v", err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestNewGeocoder(t *testing.T) {
	g, err := NewGeocoder("", GeocoderOptions{})
	require.NoError(t, err)
	assert.IsType(t, &NominatimGeocoder{}, g)

	_, err = NewGeocoder(ProviderGoogle, GeocoderOptions{})
	assert.Error(t, err)

	g, err = NewGeocoder(ProviderGoogle, GeocoderOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &GoogleMapsGeocoder{}, g)

	_, err = NewGeocoder("bing", GeocoderOptions{})
	assert.Error(t, err)
}
