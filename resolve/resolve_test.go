// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConsumers(t *testing.T) {
	table, _ := NewPostalTable([]dataset.PostalRow{
		{PostalCode: "00123", Latitude: "-6.2", Longitude: "106.8"},
	})

	in := []dataset.ConsumerRecord{
		{AppID: "1", Product: "A", Branch: "X", PostalCode: "123.0"},
		{AppID: "2", Product: "A", Branch: "X", PostalCode: "99999"},
		{AppID: "3", Product: "B", Branch: "Y", PostalCode: ""},
		{AppID: "4", Product: "B", Branch: "Y", PostalCode: "123"},
	}

	out, report := ResolveConsumers(in, table)

	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].AppID)
	assert.Equal(t, "00123", out[0].PostalCode)
	assert.Equal(t, "4", out[1].AppID)

	p, ok := out[0].Location()
	require.True(t, ok)
	assert.InDelta(t, -6.2, p.Lat, 1e-9)

	want := Report{Total: 4, Resolved: 2, Unresolved: map[string]int{"not_found": 1, "empty": 1}}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	assert.False(t, report.AllFailed())
	assert.Equal(t, "123.0", in[0].PostalCode, "input must not be modified")
	assert.Nil(t, in[0].Latitude)
}

func TestResolveOffices(t *testing.T) {
	out, report := ResolveOffices([]dataset.OfficeRecord{
		{OfficeName: "O1", Branch: "X", LocationString: "-6.2,106.8"},
		{OfficeName: "O2", Branch: "Y", LocationString: "somewhere"},
		{OfficeName: "O3", Branch: "Y", LocationString: "a,b"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "O1", out[0].OfficeName)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, map[string]int{"malformed": 1, "not_numeric": 1}, report.Unresolved)
}

func TestReportAllFailed(t *testing.T) {
	assert.False(t, Report{}.AllFailed())
	assert.True(t, Report{Total: 3}.AllFailed())
	assert.False(t, Report{Total: 3, Resolved: 1}.AllFailed())
}
