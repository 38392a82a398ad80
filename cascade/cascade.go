// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"github.com/jcodagnone/sebaran/dataset"
)

// Outcome is the result of applying a selection.
type Outcome struct {
	Selection Selection `json:"selection"`
	// Options has one entry per dimension, in application order.
	Options   []Options                `json:"options"`
	Consumers []dataset.ConsumerRecord `json:"-"`
	Offices   []dataset.OfficeRecord   `json:"-"`
	// Empty is set when both tables ended up empty: there is no data for
	// this selection.
	Empty bool  `json:"empty"`
	Focus Focus `json:"focus"`
}

// OptionsFor returns the options of dimension d out of list, or only ALL
// when list has none for it.
func OptionsFor(list []Options, d Dimension) Options {
	for _, opts := range list {
		if opts.Dimension == d {
			return opts
		}
	}

	return Options{Dimension: d, Values: []string{All}, Selected: All}
}

// Apply runs the product, office and branch stages over already resolved
// tables. The inputs are not modified; the returned tables are new slices.
func Apply(consumers []dataset.ConsumerRecord, offices []dataset.OfficeRecord, sel Selection) *Outcome {
	sel = sel.Normalize()
	out := &Outcome{Selection: sel}

	// Product stage. Offices carry no product, so they are narrowed through
	// the branches of the surviving consumers.
	out.Options = append(out.Options, newOptions(DimensionProduct,
		distinct(consumers, consumerProduct), sel.Product))

	stageConsumers := consumers
	stageOffices := offices

	if !IsAll(sel.Product) {
		stageConsumers = filter(consumers, func(c dataset.ConsumerRecord) bool {
			return c.Product == sel.Product
		})

		branches := set(distinct(stageConsumers, consumerBranch))
		stageOffices = filter(offices, func(o dataset.OfficeRecord) bool {
			_, ok := branches[o.Branch]

			return ok
		})
	}

	// Office stage.
	out.Options = append(out.Options, newOptions(DimensionOffice,
		distinct(stageOffices, officeName), sel.Office))

	if !IsAll(sel.Office) {
		stageOffices = filter(stageOffices, func(o dataset.OfficeRecord) bool {
			return o.OfficeName == sel.Office
		})

		branches := set(distinct(stageOffices, officeBranch))
		stageConsumers = filter(stageConsumers, func(c dataset.ConsumerRecord) bool {
			_, ok := branches[c.Branch]

			return ok
		})
	}

	officeStage := stageOffices

	// Branch stage.
	out.Options = append(out.Options, newOptions(DimensionBranch,
		distinct(stageOffices, officeBranch), sel.Branch))

	if !IsAll(sel.Branch) {
		stageOffices = filter(stageOffices, func(o dataset.OfficeRecord) bool {
			return o.Branch == sel.Branch
		})
		stageConsumers = filter(stageConsumers, func(c dataset.ConsumerRecord) bool {
			return c.Branch == sel.Branch
		})
	}

	out.Consumers = clone(stageConsumers)
	out.Offices = clone(stageOffices)
	out.Empty = len(out.Consumers) == 0 && len(out.Offices) == 0
	out.Focus = focus(sel, out.Offices, officeStage, out.Consumers)

	return out
}

func clone[T any](rows []T) []T {
	return append(make([]T, 0, len(rows)), rows...)
}

func consumerProduct(c dataset.ConsumerRecord) string { return c.Product }
func consumerBranch(c dataset.ConsumerRecord) string  { return c.Branch }
func officeName(o dataset.OfficeRecord) string        { return o.OfficeName }
func officeBranch(o dataset.OfficeRecord) string      { return o.Branch }
