// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"slices"
	"sort"

	"github.com/jcodagnone/sebaran/cascade"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
)

// Palette colors the office layers, assigned by sorted office name.
var Palette = []string{
	"#1f77b4", // blue
	"#d62728", // red
	"#2ca02c", // green
	"#ff7f0e", // orange
	"#9467bd", // purple
	"#17becf", // cyan
}

// Layer is the set of consumers served by one office.
type Layer struct {
	Office string `json:"office"`
	Color  string `json:"color"`
	// Count is the number of consumers before sampling.
	Count  int             `json:"count"`
	Points []spatial.Point `json:"points"`
}

// LegendEntry is one line of the office legend.
type LegendEntry struct {
	Office string `json:"office"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

// colors maps every office name to its palette color. It is computed over
// all offices so that a color does not change with the selection.
func colors(offices []dataset.OfficeRecord) map[string]string {
	names := make([]string, 0, len(offices))
	for _, o := range offices {
		names = append(names, o.OfficeName)
	}

	slices.Sort(names)
	names = slices.Compact(names)

	out := make(map[string]string, len(names))
	for i, n := range names {
		out[n] = Palette[i%len(Palette)]
	}

	return out
}

// buildLayers groups consumers by the offices serving their branch. A
// consumer whose branch has several offices appears in each of them. Offices
// without consumers get no layer. The legend is sorted by count, largest
// first.
func buildLayers(consumers []dataset.ConsumerRecord, offices []dataset.OfficeRecord,
	palette map[string]string, maxPoints int, seed uint64,
) ([]Layer, []LegendEntry) {
	branchesOf := make(map[string]map[string]struct{})
	for _, o := range offices {
		if branchesOf[o.OfficeName] == nil {
			branchesOf[o.OfficeName] = make(map[string]struct{})
		}

		branchesOf[o.OfficeName][o.Branch] = struct{}{}
	}

	names := make([]string, 0, len(branchesOf))
	for n := range branchesOf {
		names = append(names, n)
	}

	slices.Sort(names)

	var (
		layers []Layer
		legend []LegendEntry
	)

	for _, name := range names {
		branches := branchesOf[name]

		var served []dataset.ConsumerRecord

		for _, c := range consumers {
			if _, ok := branches[c.Branch]; ok {
				served = append(served, c)
			}
		}

		if len(served) == 0 {
			continue
		}

		layer := Layer{
			Office: name,
			Color:  palette[name],
			Count:  len(served),
			Points: cascade.ConsumerPoints(cascade.Sample(served, maxPoints, seed)),
		}

		layers = append(layers, layer)
		legend = append(legend, LegendEntry{Office: name, Color: layer.Color, Count: layer.Count})
	}

	sort.SliceStable(legend, func(i, j int) bool {
		return legend[i].Count > legend[j].Count
	})

	return layers, legend
}
