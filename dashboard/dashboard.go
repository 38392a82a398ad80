// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard ties the sources, the resolver and the filter cascade
// together and shapes the result for a map.
package dashboard

import (
	"context"

	"github.com/jcodagnone/sebaran/cascade"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
)

// NoDataMessage is shown when a selection matches nothing.
const NoDataMessage = "no data for the selected filters"

// Options bound the size of a view and give the fallback map position.
type Options struct {
	MaxHeatPoints      int
	MaxPointsPerOffice int
	Seed               uint64
	DefaultCenter      spatial.Point
	DefaultZoom        int
}

// OfficeMarker is an office shown on the map.
type OfficeMarker struct {
	Name   string        `json:"name"`
	Branch string        `json:"branch"`
	Point  spatial.Point `json:"point"`
}

// Totals are the row counts of the filtered tables.
type Totals struct {
	Consumers int `json:"consumers"`
	Offices   int `json:"offices"`
}

// View is everything the presentation layer needs for one selection.
type View struct {
	Selection cascade.Selection `json:"selection"`
	Options   []cascade.Options `json:"options"`
	Center    spatial.Point     `json:"center"`
	Zoom      int               `json:"zoom"`
	Focus     cascade.Level     `json:"focus"`
	Empty     bool              `json:"empty"`
	Message   string            `json:"message,omitempty"`
	Totals    Totals            `json:"totals"`
	// HeatPoints are the filtered consumers, sampled down to the maximum.
	HeatPoints []spatial.Point `json:"heat_points"`
	Offices    []OfficeMarker  `json:"offices"`
	Layers     []Layer         `json:"layers"`
	Legend     []LegendEntry   `json:"legend"`

	ConsumerRows []dataset.ConsumerRecord `json:"-"`
	OfficeRows   []dataset.OfficeRecord   `json:"-"`
}

// Service serves views over cached sources.
type Service struct {
	cache *dataset.Cache[*Prepared]
	opts  Options
}

// NewService creates a service reading sources.
func NewService(sources dataset.Sources, opts Options) *Service {
	return &Service{
		cache: dataset.NewCache(sources, Prepare),
		opts:  opts,
	}
}

// Prepare returns the located tables, loading them when the source files
// changed since the last call.
func (s *Service) Prepare(ctx context.Context) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, _, err := s.cache.Get()

	return p, err
}

// Reload drops the cached tables; the next call reads the sources again.
func (s *Service) Reload() {
	s.cache.Invalidate()
}

// View applies sel and shapes the result.
func (s *Service) View(ctx context.Context, sel cascade.Selection) (*View, error) {
	p, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	return BuildView(p, sel, s.opts), nil
}

// Outcome applies sel without shaping the result.
func (s *Service) Outcome(ctx context.Context, sel cascade.Selection) (*cascade.Outcome, error) {
	p, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	return cascade.Apply(p.Consumers, p.Offices, sel), nil
}

// HexBins aggregates the consumers matching sel into H3 cells.
func (s *Service) HexBins(ctx context.Context, sel cascade.Selection, res int) ([]spatial.HexBin, error) {
	out, err := s.Outcome(ctx, sel)
	if err != nil {
		return nil, err
	}

	return spatial.HexBins(cascade.ConsumerPoints(out.Consumers), res)
}

// BuildView runs the cascade over p and shapes the outcome.
func BuildView(p *Prepared, sel cascade.Selection, opts Options) *View {
	out := cascade.Apply(p.Consumers, p.Offices, sel)

	v := &View{
		Selection:    out.Selection,
		Options:      out.Options,
		Center:       out.Focus.Center,
		Zoom:         out.Focus.Zoom,
		Focus:        out.Focus.Level,
		Empty:        out.Empty,
		Totals:       Totals{Consumers: len(out.Consumers), Offices: len(out.Offices)},
		HeatPoints:   cascade.ConsumerPoints(cascade.Sample(out.Consumers, sampleLimit(opts.MaxHeatPoints), opts.Seed)),
		Offices:      make([]OfficeMarker, 0, len(out.Offices)),
		ConsumerRows: out.Consumers,
		OfficeRows:   out.Offices,
	}

	if !out.Focus.Found() {
		v.Center = opts.DefaultCenter
		if opts.DefaultZoom > 0 {
			v.Zoom = opts.DefaultZoom
		}
	}

	if out.Empty {
		v.Message = NoDataMessage
	}

	for _, o := range out.Offices {
		if pt, ok := o.Location(); ok {
			v.Offices = append(v.Offices, OfficeMarker{Name: o.OfficeName, Branch: o.Branch, Point: pt})
		}
	}

	v.Layers, v.Legend = buildLayers(out.Consumers, out.Offices, colors(p.Offices),
		sampleLimit(opts.MaxPointsPerOffice), opts.Seed)

	return v
}

// sampleLimit maps a non-positive maximum to no sampling.
func sampleLimit(n int) int {
	if n <= 0 {
		return -1
	}

	return n
}
