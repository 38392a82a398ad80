// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"math/rand/v2"
	"slices"
)

// Sample returns exactly limit rows picked at random with a PRNG seeded by
// seed, or rows itself when it is not larger than limit. The same rows and
// seed always give the same sample. Picked rows keep their relative order.
func Sample[T any](rows []T, limit int, seed uint64) []T {
	if limit < 0 || len(rows) <= limit {
		return rows
	}

	r := rand.New(rand.NewPCG(seed, seed))

	idx := r.Perm(len(rows))[:limit]
	slices.Sort(idx)

	out := make([]T, 0, limit)
	for _, i := range idx {
		out = append(out, rows[i])
	}

	return out
}
