// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/sebaran/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
