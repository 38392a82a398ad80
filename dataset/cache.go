// Copyright 2025 The Sebaran Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Sources names the three input tables.
type Sources struct {
	Consumers FileRef `yaml:"consumers"`
	Offices   FileRef `yaml:"offices"`
	Postal    FileRef `yaml:"postal"`
}

// Tables holds the raw tables read from Sources.
type Tables struct {
	Consumers *Table
	Offices   *Table
	Postal    *Table
}

// Load reads the three tables.
func (s Sources) Load() (*Tables, error) {
	var (
		out Tables
		err error
	)

	if out.Consumers, err = ReadFile(s.Consumers); err != nil {
		return nil, fmt.Errorf("loading consumers: %w", err)
	}

	if out.Offices, err = ReadFile(s.Offices); err != nil {
		return nil, fmt.Errorf("loading offices: %w", err)
	}

	if out.Postal, err = ReadFile(s.Postal); err != nil {
		return nil, fmt.Errorf("loading postal codes: %w", err)
	}

	return &out, nil
}

// Identity fingerprints the source files by path, size and modification
// time. It changes whenever any of the files is replaced or rewritten.
func (s Sources) Identity() (string, error) {
	paths := map[string]struct{}{
		s.Consumers.Path: {},
		s.Offices.Path:   {},
		s.Postal.Path:    {},
	}

	parts := make([]string, 0, len(paths))

	for p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}

		parts = append(parts, fmt.Sprintf("%s|%d|%d", p, info.Size(), info.ModTime().UnixNano()))
	}

	sort.Strings(parts)

	return strings.Join(parts, ";"), nil
}

// LoadFunc computes the cached value. identity is the fingerprint the value
// will be stored under.
type LoadFunc[T any] func(s Sources, identity string) (T, error)

// Cache memoizes a value derived from Sources until the source identity
// changes or Invalidate is called. It is safe for concurrent use; loads are
// serialized.
type Cache[T any] struct {
	sources Sources
	load    LoadFunc[T]

	mu       sync.Mutex
	identity string
	value    T
	valid    bool
}

// NewCache returns a cache that computes its value with load.
func NewCache[T any](sources Sources, load LoadFunc[T]) *Cache[T] {
	return &Cache[T]{sources: sources, load: load}
}

// Get returns the cached value, reloading it when the sources changed.
// The boolean reports whether a reload happened.
func (c *Cache[T]) Get() (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	identity, err := c.sources.Identity()
	if err != nil {
		return zero, false, err
	}

	if c.valid && identity == c.identity {
		return c.value, false, nil
	}

	v, err := c.load(c.sources, identity)
	if err != nil {
		return zero, false, err
	}

	c.value, c.identity, c.valid = v, identity, true

	return v, true, nil
}

// Invalidate drops the cached value.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	c.value, c.identity, c.valid = zero, "", false
}

// Identity returns the identity of the cached value, "" when empty.
func (c *Cache[T]) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.identity
}
