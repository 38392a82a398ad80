// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexBins(t *testing.T) {
	points := []Point{
		{Lat: -6.175392, Lng: 106.827153},
		{Lat: -6.175393, Lng: 106.827154},
		{Lat: -6.175394, Lng: 106.827155},
		{Lat: -7.250445, Lng: 112.768845},
	}

	bins, err := HexBins(points, 7)
	require.NoError(t, err)
	require.Len(t, bins, 2)

	assert.Equal(t, 3, bins[0].Count)
	assert.Equal(t, 1, bins[1].Count)
	assert.InDelta(t, -6.17, bins[0].Center.Lat, 0.05)
	assert.InDelta(t, 106.83, bins[0].Center.Lng, 0.05)

	again, err := HexBins(points, 7)
	require.NoError(t, err)
	assert.Equal(t, bins, again)
}

func TestHexBinsEmpty(t *testing.T) {
	bins, err := HexBins(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestHexBinsResolutionOutOfRange(t *testing.T) {
	_, err := HexBins([]Point{{Lat: 0, Lng: 0}}, 16)
	assert.Error(t, err)

	_, err = HexBins([]Point{{Lat: 0, Lng: 0}}, -1)
	assert.Error(t, err)
}
