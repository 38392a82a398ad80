// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcodagnone/sebaran/server"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen := cfg.Server.Listen
		if serveListen != "" {
			listen = serveListen
		}

		dash := newDashboard()

		// Load once so that broken sources are reported before serving.
		if _, err := dash.Prepare(cmd.Context()); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.NewServer(dash, listen, cfg.Server.ShutdownTimeout).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (default from config)")
}
