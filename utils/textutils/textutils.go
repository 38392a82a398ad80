// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils normalizes the free text found in spreadsheet cells.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel folds compatibility characters (full-width letters,
// non-breaking spaces), trims, collapses inner whitespace and upper-cases.
// It is the key used for products, branches, offices and column headers.
func NormalizeLabel(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFKC,
			runes.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}

				return r
			}),
		),
		s,
	)

	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
