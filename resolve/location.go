// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/jcodagnone/sebaran/spatial"
)

// ParseLocation parses an embedded "lat,lon" string. Anything other than
// exactly two finite numbers is Unresolved; it never fails loudly.
func ParseLocation(s string) Result {
	if strings.TrimSpace(s) == "" {
		return Unresolved(ReasonEmpty)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Unresolved(ReasonMalformed)
	}

	lat, ok := parseCoordinate(parts[0])
	if !ok {
		return Unresolved(ReasonNotNumeric)
	}

	lng, ok := parseCoordinate(parts[1])
	if !ok {
		return Unresolved(ReasonNotNumeric)
	}

	return Resolved(spatial.Point{Lat: lat, Lng: lng})
}

func parseCoordinate(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
