// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jcodagnone/sebaran/cascade"
	"github.com/jcodagnone/sebaran/dashboard"
	"github.com/jcodagnone/sebaran/dataset"
	"github.com/jcodagnone/sebaran/utils/textutils"
	"github.com/spf13/cobra"
)

type viewOptions struct {
	Selection cascade.Selection
	JSON      bool
	XLSX      string
}

var viewOpts = &viewOptions{}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Apply the filters once and print the result",
	Long: `Applies the product, office and branch filters and prints the options of
every filter, the totals, the map center and the office legend.

$ sebaran view --product KPR --office "KCU BEKASI"
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := newDashboard().View(cmd.Context(), viewOpts.Selection)
		if err != nil {
			return err
		}

		if viewOpts.XLSX != "" {
			if err := writeViewXLSX(viewOpts.XLSX, v); err != nil {
				return err
			}

			log.Printf("✅ wrote %s", viewOpts.XLSX)
		}

		if viewOpts.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(v)
		}

		return printView(os.Stdout, v)
	},
}

func printView(out io.Writer, v *dashboard.View) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, c := range v.Selection.Choices() {
		opts := cascade.OptionsFor(v.Options, c.Dimension)

		stale := ""
		if opts.Stale {
			stale = " (not available)"
		}

		fmt.Fprintf(w, "%s\t%s%s\t%s\n", c.Dimension, c.Value, stale, strings.Join(opts.Values, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "consumers\t%s\n", textutils.FormatInt(int64(v.Totals.Consumers)))
	fmt.Fprintf(w, "offices\t%s\n", textutils.FormatInt(int64(v.Totals.Offices)))
	fmt.Fprintf(w, "center\t%.6f, %.6f (zoom %d, %s)\n", v.Center.Lat, v.Center.Lng, v.Zoom, v.Focus)

	if v.Empty {
		fmt.Fprintf(w, "\n⚠️  %s\n", v.Message)

		return w.Flush()
	}

	if len(v.Legend) > 0 {
		fmt.Fprintln(w)

		for _, e := range v.Legend {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Color, e.Office, textutils.FormatInt(int64(e.Count)))
		}
	}

	return w.Flush()
}

func writeViewXLSX(path string, v *dashboard.View) error {
	consumers := dataset.Sheet{
		Name:   "konsumen",
		Header: []string{"APPID", "PRODUK", "CABANG", "KODEPOS", "REALISASIDATE", "LATITUDE", "LONGITUDE"},
	}

	for _, c := range v.ConsumerRows {
		var date any
		if c.RealizationDate != nil {
			date = *c.RealizationDate
		}

		p, _ := c.Location()
		consumers.Rows = append(consumers.Rows, []any{
			c.AppID, c.Product, c.Branch, c.PostalCode, date, p.Lat, p.Lng,
		})
	}

	offices := dataset.Sheet{
		Name:   "kantor",
		Header: []string{"NAMA KANTOR", "CABANG", "LOKASI", "LATITUDE", "LONGITUDE"},
	}

	for _, o := range v.OfficeRows {
		p, _ := o.Location()
		offices.Rows = append(offices.Rows, []any{o.OfficeName, o.Branch, o.LocationString, p.Lat, p.Lng})
	}

	return dataset.WriteXLSX(path, consumers, offices)
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewOpts.Selection.Product, "product", cascade.All, "product to show")
	viewCmd.Flags().StringVar(&viewOpts.Selection.Office, "office", cascade.All, "office to show")
	viewCmd.Flags().StringVar(&viewOpts.Selection.Branch, "branch", cascade.All, "branch to show")
	viewCmd.Flags().BoolVar(&viewOpts.JSON, "json", false, "print the view as JSON")
	viewCmd.Flags().StringVar(&viewOpts.XLSX, "xlsx", "", "also export the filtered tables to this workbook")
}
