// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

// Build, lint and package the sebaran CLI.
package main

import (
	"context"
	"dagger/sebaran/internal/dagger"
)

const (
	builderUser = "builder"
	goCacheDir  = "/home/" + builderUser + "/.cache"
	binaryPath  = "build/sebaran"
)

// Compiles the sebaran binary into build/sebaran
func (s *Sebaran) BuildCliBase(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build", "*.duckdb", "*.xlsx"]
	src *dagger.Directory,
) *dagger.Container {
	// duckdb-go links against glibc, so the image is debian based
	return dag.Container().
		From("golang:1.25.5-bookworm").
		WithExec([]string{"useradd", "-m", "-u", "1000", builderUser}).
		WithWorkdir("/src").
		WithMountedCache(
			"/go/pkg",
			dag.CacheVolume("sebaran-go-mod"),
			dagger.ContainerWithMountedCacheOpts{Owner: builderUser},
		).
		WithEnvVariable("GOCACHE", goCacheDir+"/go-build").
		WithMountedCache(
			goCacheDir,
			dag.CacheVolume("sebaran-go-build"),
			dagger.ContainerWithMountedCacheOpts{Owner: builderUser},
		).
		// module files alone, so that source edits keep the download layer
		WithFile("go.mod", src.File("go.mod")).
		WithFile("go.sum", src.File("go.sum")).
		WithExec([]string{"chown", "-R", builderUser + ":" + builderUser, "/src", "/home/" + builderUser}).
		WithUser(builderUser).
		WithExec([]string{"go", "mod", "download"}).
		WithUser("root").
		WithDirectory("/src", src).
		WithExec([]string{"chown", "-R", builderUser + ":" + builderUser, "/src"}).
		WithUser(builderUser).
		WithExec([]string{"go", "build", "-o", binaryPath, "."})
}

// Lints the code, scans it for vulnerabilities and checks license headers
func (s *Sebaran) BuildCliValidate(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build", "*.duckdb", "*.xlsx"]
	src *dagger.Directory,
) *dagger.Container {
	tools := []string{
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
		"golang.org/x/vuln/cmd/govulncheck@latest",
		"github.com/google/addlicense@latest",
	}

	ctr := s.BuildCliBase(ctx, src)
	for _, tool := range tools {
		ctr = ctr.WithExec([]string{"go", "install", tool})
	}

	return ctr.
		WithExec([]string{"go", "vet", "./..."}).
		WithExec([]string{"golangci-lint", "run", "--timeout", "5m", "./..."}).
		WithExec([]string{"govulncheck", "./..."}).
		WithExec([]string{
			"addlicense", "--check",
			"--ignore", "build/**",
			"--ignore", ".dagger/internal/**",
			"-c", "The Sebaran Authors",
			"-l", "apache",
			"-s=only",
			".",
		})
}

// Packages the binary in a distroless image with sebaran as entrypoint
func (s *Sebaran) BuildCli(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build", "*.duckdb", "*.xlsx"]
	src *dagger.Directory,
) *dagger.Container {
	bin := s.BuildCliBase(ctx, src).File("/src/" + binaryPath)

	return dag.Container().
		From("gcr.io/distroless/cc-debian12").
		WithWorkdir("/app").
		WithFile("/app/sebaran", bin).
		WithEntrypoint([]string{"/app/sebaran"}).
		WithUser(distrolessUser)
}
