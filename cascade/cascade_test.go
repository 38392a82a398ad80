// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consumer(id, product, branch string, lat, lng float64) dataset.ConsumerRecord {
	return dataset.ConsumerRecord{AppID: id, Product: product, Branch: branch}.
		WithLocation(spatial.Point{Lat: lat, Lng: lng})
}

func office(name, branch string, lat, lng float64) dataset.OfficeRecord {
	return dataset.OfficeRecord{OfficeName: name, Branch: branch}.
		WithLocation(spatial.Point{Lat: lat, Lng: lng})
}

// fixture: products {A, A, B}, branches {X, X, Y}, offices {O1->X, O2->Y}.
func fixture() ([]dataset.ConsumerRecord, []dataset.OfficeRecord) {
	consumers := []dataset.ConsumerRecord{
		consumer("1", "A", "X", -6.0, 106.0),
		consumer("2", "A", "X", -6.2, 106.2),
		consumer("3", "B", "Y", -7.0, 110.0),
	}
	offices := []dataset.OfficeRecord{
		office("O1", "X", -6.1, 106.1),
		office("O2", "Y", -7.1, 110.1),
	}

	return consumers, offices
}

func ids(rows []dataset.ConsumerRecord) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.AppID)
	}

	return out
}

func names(rows []dataset.OfficeRecord) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.OfficeName)
	}

	return out
}

func TestApply(t *testing.T) {
	consumers, offices := fixture()

	tests := []struct {
		name          string
		sel           Selection
		wantConsumers []string
		wantOffices   []string
		wantProducts  []string
		wantOfficeOpt []string
		wantBranchOpt []string
		wantEmpty     bool
		wantLevel     Level
	}{
		{
			name:          "no restriction",
			sel:           Selection{},
			wantConsumers: []string{"1", "2", "3"},
			wantOffices:   []string{"O1", "O2"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1", "O2"},
			wantBranchOpt: []string{"ALL", "X", "Y"},
			wantLevel:     LevelConsumers,
		},
		{
			name:          "product A",
			sel:           Selection{Product: "A"},
			wantConsumers: []string{"1", "2"},
			wantOffices:   []string{"O1"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1"},
			wantBranchOpt: []string{"ALL", "X"},
			wantLevel:     LevelConsumers,
		},
		{
			name:          "product A then office O1",
			sel:           Selection{Product: "A", Office: "O1"},
			wantConsumers: []string{"1", "2"},
			wantOffices:   []string{"O1"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1"},
			wantBranchOpt: []string{"ALL", "X"},
			wantLevel:     LevelOffice,
		},
		{
			name:          "office O2 restricts consumers through its branch",
			sel:           Selection{Office: "O2"},
			wantConsumers: []string{"3"},
			wantOffices:   []string{"O2"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1", "O2"},
			wantBranchOpt: []string{"ALL", "Y"},
			wantLevel:     LevelOffice,
		},
		{
			name:          "branch only",
			sel:           Selection{Branch: "X"},
			wantConsumers: []string{"1", "2"},
			wantOffices:   []string{"O1"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1", "O2"},
			wantBranchOpt: []string{"ALL", "X", "Y"},
			wantLevel:     LevelBranch,
		},
		{
			name:          "lower case selection is normalized",
			sel:           Selection{Product: " a ", Office: "o1", Branch: "x"},
			wantConsumers: []string{"1", "2"},
			wantOffices:   []string{"O1"},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O1"},
			wantBranchOpt: []string{"ALL", "X"},
			wantLevel:     LevelBranch,
		},
		{
			name:          "product B with office O1 is empty",
			sel:           Selection{Product: "B", Office: "O1"},
			wantConsumers: []string{},
			wantOffices:   []string{},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL", "O2"},
			wantBranchOpt: []string{"ALL"},
			wantEmpty:     true,
			wantLevel:     LevelNone,
		},
		{
			name:          "unknown product empties everything downstream",
			sel:           Selection{Product: "Z"},
			wantConsumers: []string{},
			wantOffices:   []string{},
			wantProducts:  []string{"ALL", "A", "B"},
			wantOfficeOpt: []string{"ALL"},
			wantBranchOpt: []string{"ALL"},
			wantEmpty:     true,
			wantLevel:     LevelNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(consumers, offices, tt.sel)

			assert.Equal(t, tt.wantConsumers, ids(got.Consumers))
			assert.Equal(t, tt.wantOffices, names(got.Offices))
			assert.Equal(t, tt.wantProducts, OptionsFor(got.Options, DimensionProduct).Values)
			assert.Equal(t, tt.wantOfficeOpt, OptionsFor(got.Options, DimensionOffice).Values)
			assert.Equal(t, tt.wantBranchOpt, OptionsFor(got.Options, DimensionBranch).Values)
			assert.Equal(t, tt.wantEmpty, got.Empty)
			assert.Equal(t, tt.wantLevel, got.Focus.Level)
		})
	}
}

func TestApplyOfficeOptionsComeFromProductStage(t *testing.T) {
	consumers, offices := fixture()
	offices = append(offices, office("O3", "Z", 0, 0))

	for _, product := range []string{All, "A", "B", "Z"} {
		got := Apply(consumers, offices, Selection{Product: product})

		want := []string{All}
		want = append(want, names(got.Offices)...)

		// With only the product chosen the office options are exactly the
		// offices left by the product stage.
		assert.ElementsMatch(t, want, OptionsFor(got.Options, DimensionOffice).Values, product)
	}
}

func TestApplyStaleSelection(t *testing.T) {
	consumers, offices := fixture()

	got := Apply(consumers, offices, Selection{Product: "A", Office: "O2"})

	opts := OptionsFor(got.Options, DimensionOffice)
	assert.True(t, opts.Stale)
	assert.Equal(t, "O2", opts.Selected)
	assert.True(t, got.Empty)
	assert.False(t, OptionsFor(got.Options, DimensionProduct).Stale)
}

func TestApplyIdempotent(t *testing.T) {
	consumers, offices := fixture()
	sel := Selection{Product: "A", Office: "O1", Branch: "X"}

	first := Apply(consumers, offices, sel)
	second := Apply(consumers, offices, sel)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Apply() not idempotent (-first +second):\n%s", diff)
	}

	again, _ := fixture()
	if diff := cmp.Diff(again, consumers); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, nil, Selection{Product: "A", Office: "O1", Branch: "X"})

	require.NotNil(t, got)
	assert.True(t, got.Empty)
	assert.Empty(t, got.Consumers)
	assert.Empty(t, got.Offices)

	for _, d := range Dimensions {
		assert.Equal(t, []string{All}, OptionsFor(got.Options, d).Values)
	}
}

func TestFocus(t *testing.T) {
	consumers, offices := fixture()

	got := Apply(consumers, offices, Selection{Branch: "X"})
	assert.Equal(t, ZoomBranch, got.Focus.Zoom)
	assert.InDelta(t, -6.1, got.Focus.Center.Lat, 1e-9)

	got = Apply(consumers, offices, Selection{Office: "O2"})
	assert.Equal(t, ZoomOffice, got.Focus.Zoom)
	assert.InDelta(t, 110.1, got.Focus.Center.Lng, 1e-9)

	got = Apply(consumers, offices, Selection{})
	assert.Equal(t, ZoomOverall, got.Focus.Zoom)
	assert.InDelta(t, (-6.0-6.2-7.0)/3, got.Focus.Center.Lat, 1e-9)
	assert.True(t, got.Focus.Found())

	got = Apply(nil, offices, Selection{})
	assert.Equal(t, LevelOffices, got.Focus.Level)
}

func TestSelectionChoices(t *testing.T) {
	sel := Selection{Product: "a", Branch: "x"}.Normalize()

	want := []Choice{
		{Dimension: DimensionProduct, Value: "A"},
		{Dimension: DimensionOffice, Value: All},
		{Dimension: DimensionBranch, Value: "X"},
	}

	if diff := cmp.Diff(want, sel.Choices()); diff != "" {
		t.Errorf("Choices() mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsForMissingDimension(t *testing.T) {
	got := OptionsFor(nil, DimensionBranch)
	assert.Equal(t, Options{Dimension: DimensionBranch, Values: []string{All}, Selected: All}, got)
}
