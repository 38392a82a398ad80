// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"slices"
)

// Options are the values offered by one filter stage.
type Options struct {
	Dimension Dimension `json:"dimension"`
	// Values starts with All, followed by the distinct values in ascending
	// order.
	Values   []string `json:"values"`
	Selected string   `json:"selected"`
	// Stale is set when Selected is not among Values. The selection is still
	// applied, which yields an empty result.
	Stale bool `json:"stale,omitempty"`
}

// Contains reports whether v is one of the offered values.
func (o Options) Contains(v string) bool {
	return slices.Contains(o.Values, v)
}

func newOptions(d Dimension, values []string, selected string) Options {
	opts := Options{
		Dimension: d,
		Values:    append([]string{All}, values...),
		Selected:  selected,
	}
	opts.Stale = !opts.Contains(selected)

	return opts
}

// distinct returns the sorted non-blank distinct values of key over rows.
func distinct[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0)

	for _, row := range rows {
		v := key(row)
		if v == "" {
			continue
		}

		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	slices.Sort(out)

	return out
}

func set(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}

	return m
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))

	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}

	return out
}
