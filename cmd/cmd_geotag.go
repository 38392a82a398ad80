// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/geotag"
	"github.com/jcodagnone/sebaran/resolve"
	"github.com/jcodagnone/sebaran/store"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type geotagOptions struct {
	Column   string
	Provider string
	NoCache  bool
}

var geotagOpts = &geotagOptions{}

var geotagCmd = &cobra.Command{
	Use:   "geotag <input.csv> <output.csv>",
	Short: "Add lat and lon columns to a CSV of addresses",
	Long: `Geocodes every distinct address of the input CSV and writes it back with
lat and lon columns. Calls to the geocoding service are spaced by
geocoder.min_delay and answers are cached in the DuckDB file at store.path, so
a rerun only asks for addresses never tried before. Addresses that cannot be
located keep empty coordinates.

$ sebaran geotag alamat_geocode_ready.csv alamat_dengan_koordinat.csv
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		in, err := os.Open(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer in.Close()

		records, err := dataset.ReadCSVRecords(args[0], in)
		if err != nil {
			return err
		}

		total, err := geotag.CountAddresses(records, geotagOpts.Column)
		if err != nil {
			return err
		}

		g, err := newGeocoder(ctx)
		if err != nil {
			return err
		}

		opts := geotag.Options{Column: geotagOpts.Column, Geocoder: g}

		if !geotagOpts.NoCache {
			db, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := store.NewGeocodeRepository(db)
			if err := repo.CreateSchema(); err != nil {
				return fmt.Errorf("creating geocode schema: %w", err)
			}

			opts.Repo = repo
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			opts.OnAddress = func() { _ = bar.Add(1) }
		}

		out, err := os.Create(filepath.Clean(args[1]))
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer out.Close()

		stats, err := geotag.Run(ctx, records, out, opts)
		if err != nil {
			return err
		}

		log.Printf("✅ %d rows, %d distinct addresses (%d cached, %d geocoded), %d located, %d without coordinates",
			stats.Rows, stats.Addresses, stats.Cached, stats.Geocoded, stats.Resolved, stats.Unresolved)

		if stats.Retry > 0 {
			log.Printf("⚠️  %d addresses could not be geocoded right now, run again to retry them", stats.Retry)
		}

		if opts.Repo != nil {
			logCache(opts.Repo)
		}

		return out.Close()
	},
}

// newGeocoder builds the configured geocoder behind the rate limiter.
func newGeocoder(ctx context.Context) (resolve.Geocoder, error) {
	provider := cfg.Geocoder.Provider
	if geotagOpts.Provider != "" {
		provider = geotagOpts.Provider
	}

	opts := cfg.GeocoderOptions()
	if rootOpts.TraceHTTP {
		opts.Trace = os.Stderr
	}

	if provider == resolve.ProviderGoogle {
		key, err := resolve.GoogleAPIKey(ctx, opts.APIKey, cfg.Geocoder.KeyName, cfg.Geocoder.GoogleProject)
		if err != nil {
			return nil, fmt.Errorf("google maps geocoding requires an API key: %w", err)
		}

		opts.APIKey = key
	}

	g, err := resolve.NewGeocoder(provider, opts)
	if err != nil {
		return nil, err
	}

	log.Printf("📍 Geocoding: %s, one request every %s", provider, cfg.Geocoder.MinDelay)

	return resolve.NewRateLimitedGeocoder(g, cfg.Geocoder.MinDelay), nil
}

func logCache(repo store.GeocodeRepository) {
	total, resolved, err := repo.Count()
	if err != nil {
		log.Printf("⚠️  counting cached addresses: %v", err)

		return
	}

	log.Printf("🗄️  cache %s: %d addresses, %d with coordinates", cfg.Store.Path, total, resolved)

	counts, err := repo.CellCounts(5)
	if err != nil {
		log.Printf("⚠️  counting cells: %v", err)

		return
	}

	for i, c := range counts {
		if i == 5 {
			break
		}

		log.Printf("   h3 %s: %d addresses", c.Cell, c.Count)
	}
}

func init() {
	rootCmd.AddCommand(geotagCmd)
	geotagCmd.Flags().StringVar(&geotagOpts.Column, "column", geotag.DefaultColumn, "column holding the address")
	geotagCmd.Flags().StringVar(&geotagOpts.Provider, "provider", "", "nominatim or google (default from config)")
	geotagCmd.Flags().BoolVar(&geotagOpts.NoCache, "no-cache", false, "do not read or write the geocode cache")
}
