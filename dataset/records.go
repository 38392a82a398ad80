// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"time"

	"github.com/jcodagnone/sebaran/spatial"
	"github.com/jcodagnone/sebaran/utils/textutils"
)

// ConsumerRecord is one row of the consumer table. Coordinates are filled by
// the resolver from the postal-code reference table.
type ConsumerRecord struct {
	AppID           string     `json:"app_id,omitempty"`
	Product         string     `json:"product"`
	Branch          string     `json:"branch"`
	PostalCode      string     `json:"postal_code"`
	RealizationDate *time.Time `json:"realization_date,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
}

// Location returns the resolved coordinates, if any.
func (c ConsumerRecord) Location() (spatial.Point, bool) {
	return location(c.Latitude, c.Longitude)
}

// WithLocation returns a copy of c located at p.
func (c ConsumerRecord) WithLocation(p spatial.Point) ConsumerRecord {
	c.Latitude, c.Longitude = &p.Lat, &p.Lng

	return c
}

// OfficeRecord is one row of the office table. Coordinates come from the
// embedded "lat,lon" location string.
type OfficeRecord struct {
	OfficeName     string   `json:"office_name"`
	Branch         string   `json:"branch"`
	LocationString string   `json:"location_string,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// Location returns the resolved coordinates, if any.
func (o OfficeRecord) Location() (spatial.Point, bool) {
	return location(o.Latitude, o.Longitude)
}

// WithLocation returns a copy of o located at p.
func (o OfficeRecord) WithLocation(p spatial.Point) OfficeRecord {
	o.Latitude, o.Longitude = &p.Lat, &p.Lng

	return o
}

func location(lat, lng *float64) (spatial.Point, bool) {
	if lat == nil || lng == nil {
		return spatial.Point{}, false
	}

	return spatial.Point{Lat: *lat, Lng: *lng}, true
}

// PostalRow is one row of the postal-code reference table, undecoded.
type PostalRow struct {
	PostalCode string
	Latitude   string
	Longitude  string
}

// DecodeStats counts what happened while decoding a consumer table.
type DecodeStats struct {
	Rows     int `json:"rows"`
	Decoded  int `json:"decoded"`
	BadDates int `json:"bad_dates"`
}

// Consumers decodes the consumer table. When the realization date column is
// present, rows whose date cannot be parsed are dropped.
func Consumers(t *Table) ([]ConsumerRecord, DecodeStats, error) {
	stats := DecodeStats{Rows: t.Len()}

	if err := RequireColumns(t, ConsumerColumns...); err != nil {
		return nil, stats, err
	}

	withDates := t.Has(ColRealizationDate)
	out := make([]ConsumerRecord, 0, t.Len())

	for _, row := range t.Rows {
		rec := ConsumerRecord{
			AppID:      t.Cell(row, ColAppID),
			Product:    textutils.NormalizeLabel(t.Cell(row, ColProduct)),
			Branch:     textutils.NormalizeLabel(t.Cell(row, ColBranch)),
			PostalCode: t.Cell(row, ColPostalCode),
		}

		if withDates {
			d, err := ParseDate(t.Cell(row, ColRealizationDate))
			if err != nil {
				stats.BadDates++

				continue
			}

			rec.RealizationDate = &d
		}

		out = append(out, rec)
	}

	stats.Decoded = len(out)

	return out, stats, nil
}

// Offices decodes the office table.
func Offices(t *Table) ([]OfficeRecord, error) {
	if err := RequireColumns(t, OfficeColumns...); err != nil {
		return nil, err
	}

	out := make([]OfficeRecord, 0, t.Len())

	for _, row := range t.Rows {
		out = append(out, OfficeRecord{
			OfficeName:     textutils.NormalizeLabel(t.Cell(row, ColOfficeName)),
			Branch:         textutils.NormalizeLabel(t.Cell(row, ColBranch)),
			LocationString: t.Cell(row, ColLocationString),
		})
	}

	return out, nil
}

// PostalRows decodes the postal-code reference table.
func PostalRows(t *Table) ([]PostalRow, error) {
	if err := RequireColumns(t, PostalColumns...); err != nil {
		return nil, err
	}

	out := make([]PostalRow, 0, t.Len())

	for _, row := range t.Rows {
		out = append(out, PostalRow{
			PostalCode: t.Cell(row, ColPostalCode),
			Latitude:   t.Cell(row, ColLatitude),
			Longitude:  t.Cell(row, ColLongitude),
		})
	}

	return out, nil
}
