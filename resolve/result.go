// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns postal codes, "lat,lon" strings and free-text
// addresses into coordinates.
package resolve

import (
	"github.com/jcodagnone/sebaran/spatial"
)

// Reason explains why a record could not be located.
type Reason int

const (
	// ReasonNone is the reason of a resolved result.
	ReasonNone Reason = iota
	// ReasonEmpty the input was blank.
	ReasonEmpty
	// ReasonMalformed the location string is not exactly two comma separated tokens.
	ReasonMalformed
	// ReasonNotNumeric a token is not a finite number.
	ReasonNotNumeric
	// ReasonNotFound the postal code is not in the reference table.
	ReasonNotFound
	// ReasonGeocoderFailed the geocoding service failed or found nothing.
	ReasonGeocoderFailed
	// ReasonGeocoderUnavailable the geocoding service was rate limited, out
	// of quota, timed out or the request was cancelled. Asking again later
	// may succeed.
	ReasonGeocoderUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "resolved"
	case ReasonEmpty:
		return "empty"
	case ReasonMalformed:
		return "malformed"
	case ReasonNotNumeric:
		return "not_numeric"
	case ReasonNotFound:
		return "not_found"
	case ReasonGeocoderFailed:
		return "geocoder_failed"
	case ReasonGeocoderUnavailable:
		return "geocoder_unavailable"
	default:
		return "unknown"
	}
}

// Transient reports whether the failure depends on the moment of the
// attempt rather than on the input, so it must not be remembered.
func (r Reason) Transient() bool {
	return r == ReasonGeocoderUnavailable
}

// Result is either Resolved, carrying a point, or Unresolved, carrying a
// reason. The zero value is Unresolved with ReasonNone and should not be used.
type Result struct {
	point    spatial.Point
	reason   Reason
	resolved bool
}

// Resolved returns a successful result.
func Resolved(p spatial.Point) Result {
	return Result{point: p, resolved: true}
}

// Unresolved returns a failed result.
func Unresolved(reason Reason) Result {
	return Result{reason: reason}
}

// Point returns the point and whether the result is resolved.
func (r Result) Point() (spatial.Point, bool) {
	return r.point, r.resolved
}

// IsResolved reports whether the result carries a point.
func (r Result) IsResolved() bool {
	return r.resolved
}

// Reason returns why the result is unresolved, ReasonNone otherwise.
func (r Result) Reason() Reason {
	if r.resolved {
		return ReasonNone
	}

	return r.reason
}
