// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/resolve"
)

// Prepared holds the located tables the cascade runs on.
type Prepared struct {
	Consumers []dataset.ConsumerRecord
	Offices   []dataset.OfficeRecord
	Report    LoadReport
}

// LoadReport summarizes how the sources were decoded and resolved.
type LoadReport struct {
	Identity  string              `json:"identity"`
	LoadedAt  time.Time           `json:"loaded_at"`
	Decode    dataset.DecodeStats `json:"decode"`
	Postal    resolve.PostalStats `json:"postal"`
	Consumers resolve.Report      `json:"consumers"`
	Offices   resolve.Report      `json:"offices"`
}

// Prepare reads the sources, checks their columns and resolves coordinates.
// identity is recorded in the report as the fingerprint of the sources read.
// A missing column fails with *dataset.MissingColumnsError.
func Prepare(sources dataset.Sources, identity string) (*Prepared, error) {
	tables, err := sources.Load()
	if err != nil {
		return nil, err
	}

	p, err := PrepareTables(tables)
	if err != nil {
		return nil, err
	}

	p.Report.Identity = identity

	return p, nil
}

// PrepareTables is Prepare over tables already in memory.
func PrepareTables(tables *dataset.Tables) (*Prepared, error) {
	consumers, decode, err := dataset.Consumers(tables.Consumers)
	if err != nil {
		return nil, fmt.Errorf("decoding consumers: %w", err)
	}

	offices, err := dataset.Offices(tables.Offices)
	if err != nil {
		return nil, fmt.Errorf("decoding offices: %w", err)
	}

	postalRows, err := dataset.PostalRows(tables.Postal)
	if err != nil {
		return nil, fmt.Errorf("decoding postal codes: %w", err)
	}

	postal, postalStats := resolve.NewPostalTable(postalRows)

	p := &Prepared{
		Report: LoadReport{
			LoadedAt: time.Now(),
			Decode:   decode,
			Postal:   postalStats,
		},
	}

	p.Consumers, p.Report.Consumers = resolve.ResolveConsumers(consumers, postal)
	p.Offices, p.Report.Offices = resolve.ResolveOffices(offices)

	logReport(p.Report)

	return p, nil
}

func logReport(r LoadReport) {
	log.Printf("📍 consumers: %d rows, %d dropped for bad dates, %d located, %v unresolved",
		r.Decode.Rows, r.Decode.BadDates, r.Consumers.Resolved, r.Consumers.Unresolved)
	log.Printf("📍 offices: %d rows, %d located, %v unresolved",
		r.Offices.Total, r.Offices.Resolved, r.Offices.Unresolved)

	if r.Postal.Invalid > 0 || r.Postal.Duplicates > 0 {
		log.Printf("⚠️  postal table: %d invalid rows, %d duplicated codes ignored",
			r.Postal.Invalid, r.Postal.Duplicates)
	}

	if r.Consumers.AllFailed() {
		log.Printf("⚠️  no consumer could be located; check the postal-code table")
	}

	if r.Offices.AllFailed() {
		log.Printf("⚠️  no office could be located; check the location column")
	}
}
