// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/sebaran/dataset"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the sources, check their columns and report how many rows were located",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newDashboard().Prepare(cmd.Context())

		var missing *dataset.MissingColumnsError
		if errors.As(err, &missing) {
			log.Printf("❌ %s is missing required columns: %s", missing.Table, strings.Join(missing.Missing, ", "))

			return err
		}

		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(p.Report); err != nil {
			return err
		}

		if p.Report.Consumers.AllFailed() || p.Report.Offices.AllFailed() {
			return fmt.Errorf("no rows could be located")
		}

		log.Println("✅ sources look fine")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
