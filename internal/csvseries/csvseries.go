// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package csvseries persists append-only row histories -- per-test
// runtimes, expense baselines, platform model fits, suite statistics --
// as CSV files, trimmed to a bounded number of most-recent rows and
// written atomically so a crash mid-write never corrupts the file a
// concurrent reader sees.
package csvseries

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/atomicfile"
)

// Series is a named CSV table: a fixed header row followed by data rows
// in append order, bounded to keep most recent rows.
type Series struct {
	Header []string
	Rows   [][]string
	Keep   int
}

// Load reads an existing series from path. A missing file yields an
// empty Series with the given header and keep bound, so a first-ever
// run of a case starts clean.
func Load(path string, header []string, keep int) (*Series, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Series{Header: header, Keep: keep}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvseries: failed to open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvseries: failed to parse %q: %w", path, err)
	}
	if len(records) == 0 {
		return &Series{Header: header, Keep: keep}, nil
	}
	return &Series{Header: records[0], Rows: records[1:], Keep: keep}, nil
}

// Append adds row to the series, trimming the oldest rows beyond Keep
// if Keep is positive.
func (s *Series) Append(row []string) {
	s.Rows = append(s.Rows, row)
	if s.Keep > 0 && len(s.Rows) > s.Keep {
		s.Rows = s.Rows[len(s.Rows)-s.Keep:]
	}
}

// Save atomically writes the series back to path as CSV: header row
// followed by the bounded data rows.
func (s *Series) Save(path string) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(s.Header); err != nil {
		return fmt.Errorf("csvseries: failed to write header for %q: %w", path, err)
	}
	if err := w.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("csvseries: failed to write rows for %q: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvseries: failed to flush %q: %w", path, err)
	}
	return atomicfile.Write(path, []byte(b.String()), 0o644)
}

// Last returns the n most recent rows, oldest first, fewer if the
// series has fewer than n rows.
func (s *Series) Last(n int) [][]string {
	if n <= 0 || n >= len(s.Rows) {
		return s.Rows
	}
	return s.Rows[len(s.Rows)-n:]
}
