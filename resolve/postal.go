// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"strings"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
)

const postalCodeWidth = 5

// NormalizePostalCode canonicalizes a postal code for exact-match lookup:
// surrounding whitespace is trimmed, a trailing ".0" left by numeric
// coercion is removed and the result is left-padded with zeros to five
// characters. Longer codes are kept as they are.
//
//	"12345.0" -> "12345", " 12345 " -> "12345", "123" -> "00123"
func NormalizePostalCode(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")

	if n := postalCodeWidth - len(s); n > 0 {
		s = strings.Repeat("0", n) + s
	}

	return s
}

// PostalStats counts what happened while building a PostalTable.
type PostalStats struct {
	Rows       int `json:"rows"`
	Entries    int `json:"entries"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
}

// PostalTable maps normalized postal codes to coordinates. It is read-only
// once built.
type PostalTable struct {
	entries map[string]spatial.Point
}

// NewPostalTable builds the table. Rows with blank codes or coordinates that
// are not numbers are skipped; for duplicated codes the first row wins.
func NewPostalTable(rows []dataset.PostalRow) (*PostalTable, PostalStats) {
	stats := PostalStats{Rows: len(rows)}
	t := &PostalTable{entries: make(map[string]spatial.Point, len(rows))}

	for _, row := range rows {
		if strings.TrimSpace(row.PostalCode) == "" {
			stats.Invalid++

			continue
		}

		lat, okLat := parseCoordinate(row.Latitude)
		lng, okLng := parseCoordinate(row.Longitude)

		if !okLat || !okLng {
			stats.Invalid++

			continue
		}

		code := NormalizePostalCode(row.PostalCode)
		if _, dup := t.entries[code]; dup {
			stats.Duplicates++

			continue
		}

		t.entries[code] = spatial.Point{Lat: lat, Lng: lng}
	}

	stats.Entries = len(t.entries)

	return t, stats
}

// Lookup resolves a raw postal code.
func (t *PostalTable) Lookup(code string) Result {
	if strings.TrimSpace(code) == "" {
		return Unresolved(ReasonEmpty)
	}

	p, ok := t.entries[NormalizePostalCode(code)]
	if !ok {
		return Unresolved(ReasonNotFound)
	}

	return Resolved(p)
}

// Len returns the number of postal codes in the table.
func (t *PostalTable) Len() int {
	return len(t.entries)
}
