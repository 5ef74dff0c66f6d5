// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package argv_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/argv"
)

func TestSplit(t *testing.T) {
	got, err := argv.Split(`-i --no-gui -A 1024 --state "warm start.state"`)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"-i", "--no-gui", "-A", "1024", "--state", "warm start.state"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestConcat(t *testing.T) {
	got, err := argv.Concat("-i --no-gui", "-A 1024")
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	want := []string{"-i", "--no-gui", "-A", "1024"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Concat() mismatch (-want +got):\n%s", diff)
	}
}

func TestConcatWithEmptyExtra(t *testing.T) {
	got, err := argv.Concat("-i --no-gui", "")
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	want := []string{"-i", "--no-gui"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Concat() mismatch (-want +got):\n%s", diff)
	}
}
