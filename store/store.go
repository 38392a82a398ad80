// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package store keeps geocoding answers in DuckDB so that addresses are sent
// to the geocoding service only once.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver
	"github.com/jcodagnone/sebaran/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when an address was never geocoded.
var ErrNotFound = errors.New("address not in geocode cache")

// h3Resolutions is the number of H3 levels stored per entry, 1 to 8.
const h3Resolutions = 8

// GeocodeEntry is the cached outcome of geocoding one address. Unresolved
// attempts are kept too, with a nil Point and the reason.
type GeocodeEntry struct {
	Address     string         `json:"address"`
	Point       *spatial.Point `json:"point"`
	Provider    string         `json:"provider"`
	Confidence  string         `json:"confidence"`
	DisplayName string         `json:"display_name"`
	Reason      string         `json:"reason,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	// H3 holds the cells at resolutions 1..8, zero when Point is nil.
	H3 [h3Resolutions]int64 `json:"-"`
}

// Resolved reports whether the address has coordinates.
func (e *GeocodeEntry) Resolved() bool {
	return e.Point != nil
}

func (e *GeocodeEntry) computeH3() error {
	e.H3 = [h3Resolutions]int64{}

	if e.Point == nil {
		return nil
	}

	latLng := h3.NewLatLng(e.Point.Lat, e.Point.Lng)
	for res := 1; res <= h3Resolutions; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		e.H3[res-1] = int64(cell)
	}

	return nil
}

// CellCount is the number of resolved addresses in an H3 cell.
type CellCount struct {
	Cell  string `json:"cell"`
	Count int    `json:"count"`
}

// GeocodeRepository persists geocoding answers.
type GeocodeRepository interface {
	// CreateSchema creates the geocodes table
	CreateSchema() error

	// Get returns the cached entry for address or ErrNotFound
	Get(address string) (*GeocodeEntry, error)

	// Save inserts or replaces entries by address in a single transaction
	Save(entries ...*GeocodeEntry) error

	// Count returns the number of cached addresses and how many resolved
	Count() (total, resolved int, err error)

	// CellCounts groups resolved addresses by their H3 cell at res
	CellCounts(res int) ([]CellCount, error)
}

// Open opens the DuckDB database at path; an empty path is in memory.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb %q: %w", path, err)
	}

	return db, nil
}

type sqlGeocodeRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewGeocodeRepository creates a repository over db.
func NewGeocodeRepository(db *sql.DB) GeocodeRepository {
	return &sqlGeocodeRepository{db: db, now: time.Now}
}

func (r *sqlGeocodeRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocodes (
			address VARCHAR PRIMARY KEY,
			lat DOUBLE,
			lng DOUBLE,
			provider VARCHAR NOT NULL DEFAULT '',
			confidence VARCHAR NOT NULL DEFAULT '',
			display_name VARCHAR NOT NULL DEFAULT '',
			reason VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res1 BIGINT,
			h3_res2 BIGINT,
			h3_res3 BIGINT,
			h3_res4 BIGINT,
			h3_res5 BIGINT,
			h3_res6 BIGINT,
			h3_res7 BIGINT,
			h3_res8 BIGINT
		);
	`)

	return err
}

func (r *sqlGeocodeRepository) Get(address string) (*GeocodeEntry, error) {
	var (
		e        GeocodeEntry
		lat, lng sql.NullFloat64
		cells    [h3Resolutions]sql.NullInt64
	)

	err := r.db.QueryRow(`
		SELECT address, lat, lng, provider, confidence, display_name, reason,
			created_at, updated_at,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		FROM geocodes
		WHERE address = ?
	`, address).Scan(
		&e.Address, &lat, &lng, &e.Provider, &e.Confidence, &e.DisplayName, &e.Reason,
		&e.CreatedAt, &e.UpdatedAt,
		&cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5], &cells[6], &cells[7],
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying geocode of %q: %w", address, err)
	}

	if lat.Valid && lng.Valid {
		e.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
	}

	for i, c := range cells {
		e.H3[i] = c.Int64
	}

	return &e, nil
}

func (r *sqlGeocodeRepository) Save(entries ...*GeocodeEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO geocodes(
			address,
			lat,
			lng,
			provider,
			confidence,
			display_name,
			reason,
			created_at,
			updated_at,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (address) DO UPDATE SET
			lat = excluded.lat,
			lng = excluded.lng,
			provider = excluded.provider,
			confidence = excluded.confidence,
			display_name = excluded.display_name,
			reason = excluded.reason,
			updated_at = excluded.updated_at,
			h3_res1 = excluded.h3_res1,
			h3_res2 = excluded.h3_res2,
			h3_res3 = excluded.h3_res3,
			h3_res4 = excluded.h3_res4,
			h3_res5 = excluded.h3_res5,
			h3_res6 = excluded.h3_res6,
			h3_res7 = excluded.h3_res7,
			h3_res8 = excluded.h3_res8
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	now := r.now()

	for _, e := range entries {
		if err = e.computeH3(); err != nil {
			_ = tx.Rollback()

			return err
		}

		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		e.UpdatedAt = now

		var lat, lng *float64
		if e.Point != nil {
			lat, lng = &e.Point.Lat, &e.Point.Lng
		}

		args := []any{
			e.Address, lat, lng, e.Provider, e.Confidence, e.DisplayName, e.Reason,
			e.CreatedAt, e.UpdatedAt,
		}
		for _, c := range e.H3 {
			args = append(args, nullCell(c))
		}

		if _, err = stmt.Exec(args...); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return fmt.Errorf("saving geocode of %q: %w", e.Address, err)
		}
	}

	return tx.Commit()
}

func nullCell(c int64) sql.NullInt64 {
	return sql.NullInt64{Int64: c, Valid: c != 0}
}

func (r *sqlGeocodeRepository) Count() (total, resolved int, err error) {
	err = r.db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE lat IS NOT NULL AND lng IS NOT NULL)
		FROM geocodes
	`).Scan(&total, &resolved)

	return total, resolved, err
}

func (r *sqlGeocodeRepository) CellCounts(res int) ([]CellCount, error) {
	if res < 1 || res > h3Resolutions {
		return nil, fmt.Errorf("h3 resolution %d out of range 1..%d", res, h3Resolutions)
	}

	// res only picks one of the h3_res columns.
	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT h3_res%d AS cell, COUNT(*) AS n
		FROM geocodes
		WHERE h3_res%d IS NOT NULL
		GROUP BY cell
		ORDER BY n DESC, cell
	`, res, res))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CellCount

	for rows.Next() {
		var (
			cell int64
			n    int
		)

		if err := rows.Scan(&cell, &n); err != nil {
			return nil, err
		}

		counts = append(counts, CellCount{Cell: h3.Cell(cell).String(), Count: n})
	}

	return counts, rows.Err()
}
