// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sebaran.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Display.MaxHeatPoints)
	assert.Equal(t, 3000, cfg.Display.MaxPointsPerOffice)
	assert.Equal(t, uint64(42), cfg.Display.SampleSeed)
	assert.Equal(t, "localhost:8080", cfg.Server.Listen)
	assert.Equal(t, "nominatim", cfg.Geocoder.Provider)
	assert.Equal(t, time.Second, cfg.Geocoder.MinDelay)
	assert.Equal(t, "kantor", cfg.Sources.OfficeSheet)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
sources:
  consumer_file: konsumen.csv
  office_file: kantor.xlsx
  postal_file: zip.xlsx
  postal_sheet: zip
display:
  max_heat_points: 100
geocoder:
  min_delay: 2s
`)

	t.Setenv("SEBARAN_DISPLAY_MAX_HEAT_POINTS", "250")
	t.Setenv("SEBARAN_SERVER_LISTEN", ":9000")
	t.Setenv("GOOGLE_MAPS_API_KEY", "k-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "konsumen.csv", cfg.Sources.ConsumerFile)
	assert.Equal(t, 250, cfg.Display.MaxHeatPoints)
	assert.Equal(t, 3000, cfg.Display.MaxPointsPerOffice)
	assert.Equal(t, 2*time.Second, cfg.Geocoder.MinDelay)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "k-123", cfg.Geocoder.APIKey)

	assert.Equal(t, dataset.FileRef{Path: "zip.xlsx", Sheet: "zip"}, cfg.SourceRefs().Postal)
	assert.Equal(t, "k-123", cfg.GeocoderOptions().APIKey)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "display: [1, 2"},
		{name: "unknown provider", content: "geocoder:\n  provider: bing\n"},
		{name: "negative limit", env: map[string]string{"SEBARAN_DISPLAY_MAX_HEAT_POINTS": "-1"}},
		{name: "bad env number", env: map[string]string{"SEBARAN_DISPLAY_SAMPLE_SEED": "forty-two"}},
		{name: "center out of range", env: map[string]string{"SEBARAN_DISPLAY_DEFAULT_LAT": "95"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
