// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package cascade narrows the consumer and office tables through the
// product, office and branch filters. Each stage offers only the values that
// survived the stages before it.
package cascade

import (
	"github.com/jcodagnone/sebaran/utils/textutils"
)

// All is the option meaning "no restriction". It always sorts first.
const All = "ALL"

// Dimension names a filter stage.
type Dimension string

// Filter stages, in the order they are applied.
const (
	DimensionProduct Dimension = "product"
	DimensionOffice  Dimension = "office"
	DimensionBranch  Dimension = "branch"
)

// Dimensions lists the stages in application order.
var Dimensions = []Dimension{DimensionProduct, DimensionOffice, DimensionBranch}

// Choice is one (dimension, value) pair of a selection.
type Choice struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
}

// Selection holds the chosen value of every stage. Empty values and All mean
// no restriction. Product filtering is single-select.
type Selection struct {
	Product string `json:"product"`
	Office  string `json:"office"`
	Branch  string `json:"branch"`
}

// Normalize returns s with every value folded the way record labels are and
// blanks replaced by All.
func (s Selection) Normalize() Selection {
	return Selection{
		Product: normalizeChoice(s.Product),
		Office:  normalizeChoice(s.Office),
		Branch:  normalizeChoice(s.Branch),
	}
}

// Get returns the value chosen for d.
func (s Selection) Get(d Dimension) string {
	switch d {
	case DimensionProduct:
		return s.Product
	case DimensionOffice:
		return s.Office
	case DimensionBranch:
		return s.Branch
	default:
		return ""
	}
}

// Choices returns the selection as an ordered sequence of pairs.
func (s Selection) Choices() []Choice {
	out := make([]Choice, 0, len(Dimensions))
	for _, d := range Dimensions {
		out = append(out, Choice{Dimension: d, Value: s.Get(d)})
	}

	return out
}

// IsAll reports whether v means no restriction.
func IsAll(v string) bool {
	return v == "" || v == All
}

func normalizeChoice(v string) string {
	v = textutils.NormalizeLabel(v)
	if IsAll(v) {
		return All
	}

	return v
}
