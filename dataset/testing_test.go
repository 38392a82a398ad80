// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeWorkbook writes a fixture workbook into the test's temp dir.
func writeWorkbook(t *testing.T, name string, sheets ...Sheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, WriteXLSX(path, sheets...))

	return path
}
