// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
)

// Zoom levels of the map view, closer for more specific selections.
const (
	ZoomBranch  = 13
	ZoomOffice  = 11
	ZoomOverall = 6
)

// Level tells which table the map center was computed from.
type Level string

// Focus levels, from the most specific.
const (
	LevelBranch    Level = "branch"
	LevelOffice    Level = "office"
	LevelConsumers Level = "consumers"
	LevelOffices   Level = "offices"
	LevelNone      Level = "none"
)

// Focus is the derived map center and zoom.
type Focus struct {
	Level  Level         `json:"level"`
	Center spatial.Point `json:"center"`
	Zoom   int           `json:"zoom"`
}

// Found reports whether a center could be computed from the data.
func (f Focus) Found() bool {
	return f.Level != LevelNone
}

// focus picks the mean of the most specific non-empty table: the offices of
// the chosen branch, then the offices of the chosen office, then all
// surviving consumers. With no consumers the surviving offices are used.
func focus(sel Selection, finalOffices, officeStage []dataset.OfficeRecord, consumers []dataset.ConsumerRecord) Focus {
	if !IsAll(sel.Branch) {
		if c, ok := spatial.Centroid(officePoints(finalOffices)); ok {
			return Focus{Level: LevelBranch, Center: c, Zoom: ZoomBranch}
		}
	}

	if !IsAll(sel.Office) {
		if c, ok := spatial.Centroid(officePoints(officeStage)); ok {
			return Focus{Level: LevelOffice, Center: c, Zoom: ZoomOffice}
		}
	}

	if c, ok := spatial.Centroid(ConsumerPoints(consumers)); ok {
		return Focus{Level: LevelConsumers, Center: c, Zoom: ZoomOverall}
	}

	if c, ok := spatial.Centroid(officePoints(finalOffices)); ok {
		return Focus{Level: LevelOffices, Center: c, Zoom: ZoomOverall}
	}

	return Focus{Level: LevelNone, Zoom: ZoomOverall}
}

// ConsumerPoints returns the coordinates of the located consumers.
func ConsumerPoints(rows []dataset.ConsumerRecord) []spatial.Point {
	out := make([]spatial.Point, 0, len(rows))

	for _, r := range rows {
		if p, ok := r.Location(); ok {
			out = append(out, p)
		}
	}

	return out
}

func officePoints(rows []dataset.OfficeRecord) []spatial.Point {
	out := make([]spatial.Point, 0, len(rows))

	for _, r := range rows {
		if p, ok := r.Location(); ok {
			out = append(out, p)
		}
	}

	return out
}
