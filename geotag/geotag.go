// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package geotag adds coordinates to a CSV of free-text addresses.
package geotag

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/resolve"
	"github.com/jcodagnone/sebaran/spatial"
	"github.com/jcodagnone/sebaran/store"
	"github.com/jcodagnone/sebaran/utils/textutils"
)

// DefaultColumn is the address column looked up when none is given.
const DefaultColumn = "full_address"

// Output column names.
const (
	LatColumn = "lat"
	LonColumn = "lon"
)

// Options configure Run.
type Options struct {
	Column   string
	Geocoder resolve.Geocoder
	// Repo caches answers across runs; nil disables caching.
	Repo store.GeocodeRepository
	// OnAddress is called after each distinct address is handled.
	OnAddress func()
}

// Stats counts what Run did.
type Stats struct {
	Rows       int `json:"rows"`
	Addresses  int `json:"addresses"`
	Cached     int `json:"cached"`
	Geocoded   int `json:"geocoded"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	// Retry counts addresses the geocoder could not answer for now. They
	// are left out of the cache so the next run asks again.
	Retry int `json:"retry"`
}

// CountAddresses returns the number of distinct non-blank addresses in the
// column, for sizing a progress bar.
func CountAddresses(records [][]string, column string) (int, error) {
	idx, err := columnIndex(records, column)
	if err != nil {
		return 0, err
	}

	return len(distinctAddresses(records[1:], idx)), nil
}

// Run reads the CSV records, geocodes every distinct address once and
// writes the records back with lat and lon columns. Rows whose address
// could not be located keep those columns empty.
func Run(ctx context.Context, records [][]string, w io.Writer, opts Options) (Stats, error) {
	var stats Stats

	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}

	idx, err := columnIndex(records, column)
	if err != nil {
		return stats, err
	}

	header, rows := records[0], records[1:]
	stats.Rows = len(rows)

	addresses := distinctAddresses(rows, idx)
	stats.Addresses = len(addresses)

	points := make(map[string]spatial.Point, len(addresses))

	for _, addr := range addresses {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		l, err := locate(ctx, addr, opts)
		if err != nil {
			return stats, err
		}

		switch {
		case l.cached:
			stats.Cached++
		case l.retry:
			stats.Geocoded++
			stats.Retry++
		default:
			stats.Geocoded++
		}

		if l.ok {
			points[addr] = l.point
		}

		if opts.OnAddress != nil {
			opts.OnAddress()
		}
	}

	latIdx, lonIdx, header := outputColumns(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return stats, fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		out := make([]string, len(header))
		copy(out, row)

		p, ok := points[cell(row, idx)]
		if ok {
			stats.Resolved++
			out[latIdx] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
			out[lonIdx] = strconv.FormatFloat(p.Lng, 'f', -1, 64)
		} else {
			stats.Unresolved++
			out[latIdx], out[lonIdx] = "", ""
		}

		if err := cw.Write(out); err != nil {
			return stats, fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return stats, cw.Error()
}

type lookup struct {
	point  spatial.Point
	ok     bool
	cached bool
	retry  bool
}

// locate answers from the cache when the address was attempted before,
// otherwise asks the geocoder and caches the answer, definitive failures
// included. Transient failures are not cached; a cancelled ctx is returned
// as the error.
func locate(ctx context.Context, addr string, opts Options) (lookup, error) {
	if opts.Repo != nil {
		e, err := opts.Repo.Get(addr)
		if err == nil {
			if e.Point != nil {
				return lookup{point: *e.Point, ok: true, cached: true}, nil
			}

			return lookup{cached: true}, nil
		}

		if !errors.Is(err, store.ErrNotFound) {
			return lookup{}, err
		}
	}

	res, found := resolve.GeocodeAddress(ctx, opts.Geocoder, addr)
	if err := ctx.Err(); err != nil {
		return lookup{}, err
	}

	p, ok := res.Point()
	if res.Reason().Transient() {
		return lookup{retry: true}, nil
	}

	if opts.Repo != nil {
		entry := &store.GeocodeEntry{Address: addr}
		if found != nil {
			entry.Provider = found.Provider
			entry.Confidence = found.Confidence
			entry.DisplayName = found.DisplayName
		}

		if ok {
			entry.Point = &p
		} else {
			entry.Reason = res.Reason().String()
		}

		if err := opts.Repo.Save(entry); err != nil {
			return lookup{}, fmt.Errorf("caching %q: %w", addr, err)
		}
	}

	return lookup{point: p, ok: ok}, nil
}

func columnIndex(records [][]string, column string) (int, error) {
	if len(records) == 0 {
		return 0, dataset.ErrEmptySheet
	}

	want := textutils.NormalizeLabel(column)
	for i, h := range records[0] {
		if textutils.NormalizeLabel(strings.TrimPrefix(h, "\ufeff")) == want {
			return i, nil
		}
	}

	return 0, &dataset.MissingColumnsError{Table: "addresses", Missing: []string{column}}
}

func distinctAddresses(rows [][]string, idx int) []string {
	seen := make(map[string]struct{}, len(rows))

	var out []string

	for _, row := range rows {
		addr := cell(row, idx)
		if addr == "" {
			continue
		}

		if _, ok := seen[addr]; ok {
			continue
		}

		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	return out
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// outputColumns reuses existing lat and lon columns or appends them.
func outputColumns(header []string) (latIdx, lonIdx int, out []string) {
	out = append([]string(nil), header...)
	latIdx, lonIdx = -1, -1

	for i, h := range header {
		switch textutils.NormalizeLabel(h) {
		case "LAT":
			latIdx = i
		case "LON":
			lonIdx = i
		}
	}

	if latIdx < 0 {
		latIdx = len(out)
		out = append(out, LatColumn)
	}

	if lonIdx < 0 {
		lonIdx = len(out)
		out = append(out, LonColumn)
	}

	return latIdx, lonIdx, out
}
