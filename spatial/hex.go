// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"
)

// MaxHexResolution is the finest resolution accepted by HexBins.
const MaxHexResolution = 12

// HexBin is a count of points falling in one H3 cell.
type HexBin struct {
	Cell   string `json:"cell"`
	Center Point  `json:"center"`
	Count  int    `json:"count"`
}

// Cell returns the H3 cell of p at the given resolution.
func Cell(p Point, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// HexBins aggregates points into H3 cells. Bins are sorted by descending
// count, ties broken by cell id, so the output is stable.
func HexBins(points []Point, res int) ([]HexBin, error) {
	if res < 0 || res > MaxHexResolution {
		return nil, fmt.Errorf("h3 resolution %d out of range [0,%d]", res, MaxHexResolution)
	}

	counts := make(map[h3.Cell]int)

	for _, p := range points {
		cell, err := Cell(p, res)
		if err != nil {
			return nil, err
		}

		counts[cell]++
	}

	bins := make([]HexBin, 0, len(counts))

	for cell, n := range counts {
		center, err := h3.CellToLatLng(cell)
		if err != nil {
			return nil, fmt.Errorf("locating h3 cell %s: %w", cell, err)
		}

		bins = append(bins, HexBin{
			Cell:   cell.String(),
			Center: Point{Lat: center.Lat, Lng: center.Lng},
			Count:  n,
		})
	}

	sort.Slice(bins, func(i, j int) bool {
		if bins[i].Count != bins[j].Count {
			return bins[i].Count > bins[j].Count
		}

		return bins[i].Cell < bins[j].Cell
	})

	return bins, nil
}
