// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/sebaran/spatial"
	"golang.org/x/time/rate"
)

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Latitude    float64
	Longitude   float64
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
}

// RateLimitedGeocoder spaces the calls to the wrapped geocoder by at least
// the configured delay. Callers block until their turn or until ctx ends.
type RateLimitedGeocoder struct {
	inner   Geocoder
	limiter *rate.Limiter
}

// NewRateLimitedGeocoder wraps g so that calls are at least minDelay apart.
// A non-positive delay disables limiting.
func NewRateLimitedGeocoder(g Geocoder, minDelay time.Duration) *RateLimitedGeocoder {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}

	return &RateLimitedGeocoder{
		inner:   g,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Geocode implements Geocoder.
func (g *RateLimitedGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "waiting for rate limiter", Err: err}
	}

	return g.inner.Geocode(ctx, address)
}

// GeocodeAddress geocodes one address and never fails: any error, panic or
// empty answer degrades to Unresolved. There is no retry. Failures that may
// go away later, including a cancelled ctx, are reported with
// ReasonGeocoderUnavailable. The provider's answer is returned when there
// was one, even if unusable.
func GeocodeAddress(ctx context.Context, g Geocoder, address string) (res Result, found *GeocodingResult) {
	if address == "" {
		return Unresolved(ReasonEmpty), nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  geocoder panicked for %q: %v", address, r)

			res, found = Unresolved(ReasonGeocoderFailed), nil
		}
	}()

	found, err := g.Geocode(ctx, address)
	if err != nil {
		switch {
		case ctx.Err() != nil || IsTransientError(err):
			log.Printf("⏳ geocoding %q: %v", address, err)

			return Unresolved(ReasonGeocoderUnavailable), nil
		case IsNotFoundError(err):
			log.Printf("🔍 no match for %q", address)
		default:
			log.Printf("⚠️  geocoding %q: %v", address, err)
		}

		return Unresolved(ReasonGeocoderFailed), nil
	}

	if found == nil {
		return Unresolved(ReasonGeocoderFailed), nil
	}

	p := spatial.Point{Lat: found.Latitude, Lng: found.Longitude}
	if !p.Valid() {
		log.Printf("⚠️  geocoding %q: invalid coordinates %s", address, p)

		return Unresolved(ReasonGeocoderFailed), found
	}

	return Resolved(p), found
}

// NewGeocoder builds the geocoder named by provider.
func NewGeocoder(provider string, opts GeocoderOptions) (Geocoder, error) {
	switch provider {
	case "", ProviderNominatim:
		return NewNominatimGeocoder(opts), nil
	case ProviderGoogle:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("google maps geocoder requires an API key")
		}

		return NewGoogleMapsGeocoder(opts), nil
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", provider)
	}
}
