// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the sebaran settings: built-in defaults, then an
// optional YAML file, then SEBARAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/resolve"
	"github.com/jcodagnone/sebaran/spatial"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// SEBARAN_DISPLAY_MAX_HEAT_POINTS.
const EnvPrefix = "SEBARAN"

// Config holds all the settings.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Display  DisplayConfig  `yaml:"display"`
	Server   ServerConfig   `yaml:"server"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Store    StoreConfig    `yaml:"store"`
}

// SourcesConfig locates the three input tables. An empty sheet means the
// first sheet of the workbook.
type SourcesConfig struct {
	ConsumerFile  string `yaml:"consumer_file" split_words:"true"`
	ConsumerSheet string `yaml:"consumer_sheet" split_words:"true"`
	OfficeFile    string `yaml:"office_file" split_words:"true"`
	OfficeSheet   string `yaml:"office_sheet" split_words:"true"`
	PostalFile    string `yaml:"postal_file" split_words:"true"`
	PostalSheet   string `yaml:"postal_sheet" split_words:"true"`
}

// DisplayConfig bounds what is sent to the map.
type DisplayConfig struct {
	MaxHeatPoints      int     `yaml:"max_heat_points" split_words:"true"`
	MaxPointsPerOffice int     `yaml:"max_points_per_office" split_words:"true"`
	SampleSeed         uint64  `yaml:"sample_seed" split_words:"true"`
	DefaultLat         float64 `yaml:"default_lat" split_words:"true"`
	DefaultLng         float64 `yaml:"default_lng" split_words:"true"`
	DefaultZoom        int     `yaml:"default_zoom" split_words:"true"`
}

// DefaultCenter returns the center used when no record has coordinates.
func (d DisplayConfig) DefaultCenter() spatial.Point {
	return spatial.Point{Lat: d.DefaultLat, Lng: d.DefaultLng}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen          string        `yaml:"listen" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// GeocoderConfig configures address geocoding.
type GeocoderConfig struct {
	Provider  string        `yaml:"provider" split_words:"true"`
	MinDelay  time.Duration `yaml:"min_delay" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout" split_words:"true"`
	UserAgent string        `yaml:"user_agent" split_words:"true"`
	Region    string        `yaml:"region" split_words:"true"`
	// APIKey is also read from the unprefixed GOOGLE_MAPS_API_KEY.
	APIKey        string `yaml:"api_key" envconfig:"GOOGLE_MAPS_API_KEY"`
	KeyName       string `yaml:"key_name" split_words:"true"`
	GoogleProject string `yaml:"google_project" split_words:"true"`
}

// StoreConfig locates the DuckDB geocode cache.
type StoreConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// Default returns the built-in settings, matching the workbooks the
// dashboard was first built around.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			ConsumerFile: "Data ZipCode.xlsx",
			OfficeFile:   "master_zip.xlsx",
			OfficeSheet:  "kantor",
			PostalFile:   "master_zip.xlsx",
			PostalSheet:  "Sheet1",
		},
		Display: DisplayConfig{
			MaxHeatPoints:      6000,
			MaxPointsPerOffice: 3000,
			SampleSeed:         42,
			DefaultLat:         -2.5,
			DefaultLng:         118.0,
			DefaultZoom:        5,
		},
		Server: ServerConfig{
			Listen:          "localhost:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Geocoder: GeocoderConfig{
			Provider:  resolve.ProviderNominatim,
			MinDelay:  time.Second,
			Timeout:   10 * time.Second,
			UserAgent: "sebaran-geotag",
			Region:    "id",
			KeyName:   resolve.DefaultKeyDisplayName,
		},
		Store: StoreConfig{
			Path: "geocodes.duckdb",
		},
	}
}

// Load returns the defaults overridden by the YAML file at path (skipped
// when path is empty) and then by the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error

	if c.Sources.ConsumerFile == "" {
		errs = append(errs, errors.New("sources.consumer_file is required"))
	}

	if c.Sources.OfficeFile == "" {
		errs = append(errs, errors.New("sources.office_file is required"))
	}

	if c.Sources.PostalFile == "" {
		errs = append(errs, errors.New("sources.postal_file is required"))
	}

	if c.Display.MaxHeatPoints < 0 || c.Display.MaxPointsPerOffice < 0 {
		errs = append(errs, errors.New("display limits must not be negative"))
	}

	if !c.Display.DefaultCenter().Valid() {
		errs = append(errs, fmt.Errorf("display default center %s is out of range", c.Display.DefaultCenter()))
	}

	switch c.Geocoder.Provider {
	case resolve.ProviderNominatim, resolve.ProviderGoogle:
	default:
		errs = append(errs, fmt.Errorf("geocoder.provider %q is not one of %s, %s",
			c.Geocoder.Provider, resolve.ProviderNominatim, resolve.ProviderGoogle))
	}

	if c.Geocoder.MinDelay < 0 {
		errs = append(errs, errors.New("geocoder.min_delay must not be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// SourceRefs returns the input tables as dataset references.
func (c *Config) SourceRefs() dataset.Sources {
	return dataset.Sources{
		Consumers: dataset.FileRef{Path: c.Sources.ConsumerFile, Sheet: c.Sources.ConsumerSheet},
		Offices:   dataset.FileRef{Path: c.Sources.OfficeFile, Sheet: c.Sources.OfficeSheet},
		Postal:    dataset.FileRef{Path: c.Sources.PostalFile, Sheet: c.Sources.PostalSheet},
	}
}

// GeocoderOptions returns the options of the HTTP geocoders. The API key is
// the configured one; discovery through ADC is up to the caller.
func (c *Config) GeocoderOptions() resolve.GeocoderOptions {
	return resolve.GeocoderOptions{
		APIKey:    c.Geocoder.APIKey,
		Region:    c.Geocoder.Region,
		UserAgent: c.Geocoder.UserAgent,
		Timeout:   c.Geocoder.Timeout,
	}
}
