// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"
)

var (
	// ErrUnknownFormat is returned for files that are neither xlsx nor csv.
	ErrUnknownFormat = errors.New("unknown file format")
	// ErrNoSheet is returned when the requested sheet does not exist.
	ErrNoSheet = errors.New("sheet not found")
	// ErrEmptySheet is returned when a sheet has no header row.
	ErrEmptySheet = errors.New("sheet has no header row")
)

// FileRef points to a table inside a file. Sheet is ignored for csv files
// and defaults to the first sheet for workbooks.
type FileRef struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

func (r FileRef) String() string {
	if r.Sheet == "" {
		return r.Path
	}

	return r.Path + "#" + r.Sheet
}

// ReadFile reads the table referenced by ref, dispatching on the extension.
func ReadFile(ref FileRef) (*Table, error) {
	switch strings.ToLower(filepath.Ext(ref.Path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", ref.Path, err)
		}
		defer f.Close()

		return readSheet(f, ref)
	case ".csv", ".txt":
		f, err := os.Open(filepath.Clean(ref.Path))
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", ref.Path, err)
		}
		defer f.Close()

		return ReadCSV(ref.String(), f)
	default:
		return nil, fmt.Errorf("%s: %w", ref.Path, ErrUnknownFormat)
	}
}

// ReadXLSX reads one sheet of a workbook.
func ReadXLSX(path, sheet string) (*Table, error) {
	return ReadFile(FileRef{Path: path, Sheet: sheet})
}

func readSheet(f *excelize.File, ref FileRef) (*Table, error) {
	sheet := ref.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: %w", ref.Path, ErrNoSheet)
		}

		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %q: %w", ref.Path, sheet, ErrNoSheet)
	}

	// Raw values keep dates as serial numbers and numbers without the
	// workbook's display format, so decoding does not depend on locale.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, ref.Path, err)
	}

	return tableFromRows(ref.String(), rows)
}

// ReadCSV reads a delimited file into a table.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	rows, err := ReadCSVRecords(name, r)
	if err != nil {
		return nil, err
	}

	return tableFromRows(name, rows)
}

// ReadCSVRecords reads a delimited file as raw records, header included.
// The encoding is sniffed (Excel on Windows commonly exports windows-1252)
// and the delimiter is ';' when the header has more semicolons than commas.
func ReadCSVRecords(name string, r io.Reader) ([][]string, error) {
	decoded, err := charset.NewReader(r, "text/csv")
	if err != nil {
		return nil, fmt.Errorf("detecting encoding of %s: %w", name, err)
	}

	br := bufio.NewReader(decoded)

	peek, _ := br.Peek(4096)
	firstLine, _, _ := bytes.Cut(peek, []byte("\n"))

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	return rows, nil
}

func tableFromRows(name string, rows [][]string) (*Table, error) {
	var header []string

	data := make([][]string, 0, len(rows))

	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		if header == nil {
			header = row

			continue
		}

		data = append(data, row)
	}

	if header == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySheet)
	}

	return NewTable(name, header, data), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// Sheet is one worksheet to be written by WriteXLSX.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// WriteXLSX writes the sheets to a new workbook at path.
func WriteXLSX(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("writing workbook: no sheets")
	}

	x := excelize.NewFile()
	defer x.Close()

	for i, s := range sheets {
		idx, err := x.NewSheet(s.Name)
		if err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}

		if i == 0 {
			x.SetActiveSheet(idx)
		}

		header := make([]any, len(s.Header))
		for j, h := range s.Header {
			header[j] = h
		}

		if err := x.SetSheetRow(s.Name, "A1", &header); err != nil {
			return fmt.Errorf("writing header of %q: %w", s.Name, err)
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}

			if err := x.SetSheetRow(s.Name, cell, &row); err != nil {
				return fmt.Errorf("writing row %d of %q: %w", r+2, s.Name, err)
			}
		}
	}

	if !hasSheet(sheets, "Sheet1") {
		if err := x.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	return nil
}

func hasSheet(sheets []Sheet, name string) bool {
	for _, s := range sheets {
		if s.Name == name {
			return true
		}
	}

	return false
}
