// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/sebaran/config"
	"github.com/jcodagnone/sebaran/dashboard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

type rootOptions struct {
	ConfigPath string
	EnvFile    string
	TraceHTTP  bool
}

var (
	rootOpts = &rootOptions{}
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sebaran",
	Short: "consumer and office distribution maps",
	Long: `
sebaran loads the consumer, office and postal-code workbooks, locates every
consumer by postal code and every office by its coordinates, and serves the
product → office → branch filters together with the data needed to draw the
distribution map.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(rootOpts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", rootOpts.EnvFile, err)
		}

		var err error

		cfg, err = config.Load(rootOpts.ConfigPath)
		if err != nil {
			return err
		}

		return nil
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootOpts.ConfigPath,
		"config",
		"",
		"YAML configuration file",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOpts.EnvFile,
		"env-file",
		".env",
		"dotenv file loaded before reading the environment",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOpts.TraceHTTP,
		"trace-http",
		false,
		"dump the geocoder HTTP traffic to stderr",
	)
}

func newDashboard() *dashboard.Service {
	return dashboard.NewService(cfg.SourceRefs(), dashboard.Options{
		MaxHeatPoints:      cfg.Display.MaxHeatPoints,
		MaxPointsPerOffice: cfg.Display.MaxPointsPerOffice,
		Seed:               cfg.Display.SampleSeed,
		DefaultCenter:      cfg.Display.DefaultCenter(),
		DefaultZoom:        cfg.Display.DefaultZoom,
	})
}
