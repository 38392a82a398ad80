// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T) Sources {
	t.Helper()

	dir := t.TempDir()
	consumers := filepath.Join(dir, "konsumen.csv")
	master := filepath.Join(dir, "master_zip.xlsx")

	require.NoError(t, os.WriteFile(consumers, []byte("PRODUK,CABANG,KODEPOS\nNMC,BEKASI,17111\n"), 0o600))
	require.NoError(t, WriteXLSX(master,
		Sheet{Name: "kantor", Header: []string{"NAMA KANTOR", "CABANG", "LOKASI"}, Rows: [][]any{{"KCU BEKASI", "BEKASI", "-6.2,106.9"}}},
		Sheet{Name: "Sheet1", Header: []string{"postal_code", "Latitude", "Longitude"}, Rows: [][]any{{"17111", -6.2, 106.9}}},
	))

	return Sources{
		Consumers: FileRef{Path: consumers},
		Offices:   FileRef{Path: master, Sheet: "kantor"},
		Postal:    FileRef{Path: master, Sheet: "Sheet1"},
	}
}

func TestSourcesLoad(t *testing.T) {
	tables, err := writeSources(t).Load()
	require.NoError(t, err)

	assert.Equal(t, 1, tables.Consumers.Len())
	assert.Equal(t, 1, tables.Offices.Len())
	assert.Equal(t, 1, tables.Postal.Len())
}

func TestCacheReloadsOnChange(t *testing.T) {
	sources := writeSources(t)
	loads := 0

	cache := NewCache(sources, func(s Sources, _ string) (*Tables, error) {
		loads++

		return s.Load()
	})

	_, reloaded, err := cache.Get()
	require.NoError(t, err)
	assert.True(t, reloaded)

	_, reloaded, err = cache.Get()
	require.NoError(t, err)
	assert.False(t, reloaded)
	assert.Equal(t, 1, loads)

	require.NoError(t, os.WriteFile(sources.Consumers.Path, []byte("PRODUK,CABANG,KODEPOS\nNMC,BEKASI,17111\nUMC,BEKASI,17112\n"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(sources.Consumers.Path, future, future))

	tables, reloaded, err := cache.Get()
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, 2, tables.Consumers.Len())
	assert.Equal(t, 2, loads)

	cache.Invalidate()
	assert.Empty(t, cache.Identity())

	_, reloaded, err = cache.Get()
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, 3, loads)
}

func TestCacheLoadSeesStoredIdentity(t *testing.T) {
	sources := writeSources(t)

	var seen []string

	cache := NewCache(sources, func(_ Sources, identity string) (string, error) {
		seen = append(seen, identity)

		return identity, nil
	})

	v, _, err := cache.Get()
	require.NoError(t, err)
	assert.Equal(t, cache.Identity(), v)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(sources.Offices.Path, future, future))

	v, reloaded, err := cache.Get()
	require.NoError(t, err)
	require.True(t, reloaded)
	assert.Equal(t, cache.Identity(), v)
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
}

func TestCacheMissingFile(t *testing.T) {
	cache := NewCache(Sources{Consumers: FileRef{Path: "/nonexistent/konsumen.xlsx"}}, func(s Sources, _ string) (*Tables, error) {
		return s.Load()
	})

	_, _, err := cache.Get()
	assert.Error(t, err)
}

func TestCacheConcurrentGet(t *testing.T) {
	sources := writeSources(t)

	var (
		mu    sync.Mutex
		loads int
	)

	cache := NewCache(sources, func(_ Sources, _ string) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		loads++

		return loads, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			v, _, err := cache.Get()
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, loads)
}
