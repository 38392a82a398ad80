// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"github.com/jcodagnone/sebaran/dataset"
)

// Report summarizes a resolution pass. Unresolved is keyed by Reason.String().
type Report struct {
	Total      int            `json:"total"`
	Resolved   int            `json:"resolved"`
	Unresolved map[string]int `json:"unresolved"`
}

func newReport(total int) Report {
	return Report{Total: total, Unresolved: map[string]int{}}
}

func (r *Report) add(res Result) {
	if res.IsResolved() {
		r.Resolved++

		return
	}

	r.Unresolved[res.Reason().String()]++
}

// AllFailed reports whether there were rows and none of them resolved. It
// lets callers tell an empty input apart from a broken reference table.
func (r Report) AllFailed() bool {
	return r.Total > 0 && r.Resolved == 0
}

// ResolveConsumers locates each consumer through the postal table. Postal
// codes are normalized in the output; unresolved consumers are dropped and
// counted. The input is not modified.
func ResolveConsumers(records []dataset.ConsumerRecord, table *PostalTable) ([]dataset.ConsumerRecord, Report) {
	report := newReport(len(records))
	out := make([]dataset.ConsumerRecord, 0, len(records))

	for _, rec := range records {
		res := table.Lookup(rec.PostalCode)
		report.add(res)

		p, ok := res.Point()
		if !ok {
			continue
		}

		rec.PostalCode = NormalizePostalCode(rec.PostalCode)
		out = append(out, rec.WithLocation(p))
	}

	return out, report
}

// ResolveOffices locates each office from its location string. Unresolved
// offices are dropped and counted. The input is not modified.
func ResolveOffices(records []dataset.OfficeRecord) ([]dataset.OfficeRecord, Report) {
	report := newReport(len(records))
	out := make([]dataset.OfficeRecord, 0, len(records))

	for _, rec := range records {
		res := ParseLocation(rec.LocationString)
		report.add(res)

		if p, ok := res.Point(); ok {
			out = append(out, rec.WithLocation(p))
		}
	}

	return out, report
}
