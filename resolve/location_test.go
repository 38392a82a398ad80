// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/jcodagnone/sebaran/spatial"
	"github.com/stretchr/testify/assert"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   spatial.Point
		reason Reason
	}{
		{"plain", "-6.2,106.8", spatial.Point{Lat: -6.2, Lng: 106.8}, ReasonNone},
		{"spaces", " -6.2 , 106.8 ", spatial.Point{Lat: -6.2, Lng: 106.8}, ReasonNone},
		{"integers", "0,0", spatial.Point{}, ReasonNone},
		{"empty", "", spatial.Point{}, ReasonEmpty},
		{"blank", "   ", spatial.Point{}, ReasonEmpty},
		{"one token", "-6.2", spatial.Point{}, ReasonMalformed},
		{"three tokens", "1,2,3", spatial.Point{}, ReasonMalformed},
		{"not numeric", "abc,106.8", spatial.Point{}, ReasonNotNumeric},
		{"empty token", "-6.2,", spatial.Point{}, ReasonNotNumeric},
		{"nan", "NaN,1", spatial.Point{}, ReasonNotNumeric},
		{"inf", "1,Inf", spatial.Point{}, ReasonNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseLocation(tt.in)
			assert.Equal(t, tt.reason, res.Reason())
			assert.Equal(t, tt.reason == ReasonNone, res.IsResolved())

			p, _ := res.Point()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "resolved", Resolved(spatial.Point{}).Reason().String())
	assert.Equal(t, "not_found", ReasonNotFound.String())
	assert.Equal(t, "unknown", Reason(99).String())
}
