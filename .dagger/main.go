// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"dagger/sebaran/internal/dagger"
)

const distrolessUser = "65532" // nonroot user in distroless images

type Sebaran struct{}

// Runs the unit tests of every package
func (s *Sebaran) Test(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build", "*.duckdb", "*.xlsx"]
	src *dagger.Directory,
) (string, error) {
	return s.BuildCliBase(ctx, src).
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}

// Serves the dashboard API from the standalone CLI container. The source
// workbooks are mounted from the host directory.
func (s *Sebaran) Serve(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build", "*.duckdb", "*.xlsx"]
	src *dagger.Directory,
	// directory holding the consumer and office workbooks
	data *dagger.Directory,
) *dagger.Service {
	return s.BuildCli(ctx, src).
		WithMountedDirectory("/data", data).
		WithWorkdir("/data").
		WithExposedPort(8080).
		AsService(dagger.ContainerAsServiceOpts{
			Args:          []string{"serve", "--listen", "0.0.0.0:8080"},
			UseEntrypoint: true,
		})
}
