// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package dataset loads the consumer, office and postal-code tables from
// spreadsheets and decodes them into records.
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jcodagnone/sebaran/utils/textutils"
)

// Canonical column names. Headers found in the source files are mapped onto
// these through synonyms.
const (
	ColProduct         = "product"
	ColBranch          = "branch"
	ColPostalCode      = "postal_code"
	ColRealizationDate = "realization_date"
	ColAppID           = "app_id"
	ColOfficeName      = "office_name"
	ColLocationString  = "location_string"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
)

// Required columns per table.
var (
	ConsumerColumns = []string{ColProduct, ColBranch, ColPostalCode}
	OfficeColumns   = []string{ColOfficeName, ColBranch, ColLocationString}
	PostalColumns   = []string{ColPostalCode, ColLatitude, ColLongitude}
)

// synonyms maps normalized headers (see normalizeHeader) to canonical names.
var synonyms = map[string]string{
	"PRODUCT": ColProduct, "PRODUK": ColProduct,
	"BRANCH": ColBranch, "CABANG": ColBranch,
	"POSTAL CODE": ColPostalCode, "KODEPOS": ColPostalCode, "KODE POS": ColPostalCode,
	"ZIPCODE": ColPostalCode, "ZIP CODE": ColPostalCode, "ZIP": ColPostalCode,
	"REALIZATION DATE": ColRealizationDate, "REALISASIDATE": ColRealizationDate,
	"REALISASI DATE": ColRealizationDate, "TANGGAL REALISASI": ColRealizationDate,
	"APPID": ColAppID, "APP ID": ColAppID,
	"OFFICE NAME": ColOfficeName, "NAMA KANTOR": ColOfficeName, "KANTOR": ColOfficeName,
	"LOCATION STRING": ColLocationString, "LOCATION": ColLocationString, "LOKASI": ColLocationString,
	"LATITUDE": ColLatitude, "LAT": ColLatitude,
	"LONGITUDE": ColLongitude, "LON": ColLongitude, "LNG": ColLongitude,
}

// normalizeHeader trims and upper-cases a header; '_' and '-' count as spaces.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)

	return textutils.NormalizeLabel(h)
}

// CanonicalColumn returns the canonical name for a raw header, or its
// normalized form when it is not a recognized column.
func CanonicalColumn(h string) string {
	n := normalizeHeader(h)
	if c, ok := synonyms[n]; ok {
		return c
	}

	return n
}

// Table is a sheet as read from disk: a header row and the data rows.
// Cells are kept as text; decoding happens in Consumers, Offices and PostalRows.
type Table struct {
	Name    string
	Columns []string // canonical names, same order as the source header
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a table from a raw header and its rows. When two headers
// map to the same canonical column the first one wins.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		Rows:    rows,
		index:   make(map[string]int, len(header)),
	}

	for i, h := range header {
		c := CanonicalColumn(h)
		t.Columns[i] = c

		if _, dup := t.index[c]; !dup && c != "" {
			t.index[c] = i
		}
	}

	return t
}

// Has reports whether the canonical column is present.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]

	return ok
}

// Cell returns the trimmed value of col in row, or "" when the column is
// absent or the row is shorter than the header.
func (t *Table) Cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// MissingColumnsError is returned when a table lacks required columns.
type MissingColumnsError struct {
	Table   string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("table %q is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// RequireColumns checks that every required canonical column is present.
// Missing columns are reported sorted.
func RequireColumns(t *Table, required ...string) error {
	var missing []string

	for _, c := range required {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)

	return &MissingColumnsError{Table: t.Name, Missing: missing}
}
