// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildConfigUsesDefaultsWhenIniAbsent(t *testing.T) {
	dir := t.TempDir()
	cli := &cliFlags{suite: dir}

	cfg, err := buildConfig(cli)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.SampleRate != 48000 || cfg.BaselineAvg != 5 || cfg.TimingsKeep != 50 {
		t.Errorf("buildConfig() = %+v, want built-in defaults", cfg)
	}
}

func TestBuildConfigLayersIniOverDefaults(t *testing.T) {
	dir := t.TempDir()
	ini := "[Runner]\nsampleRate = 44100\ntrendShortTerm = 3\n"
	if err := os.WriteFile(filepath.Join(dir, "defaults.ini"), []byte(ini), 0o644); err != nil {
		t.Fatalf("failed to write defaults.ini: %v", err)
	}
	cli := &cliFlags{suite: dir}

	cfg, err := buildConfig(cli)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("cfg.SampleRate = %d, want 44100 from defaults.ini", cfg.SampleRate)
	}
	if cfg.ShortTerm != 3 {
		t.Errorf("cfg.ShortTerm = %d, want 3 from defaults.ini", cfg.ShortTerm)
	}
	if cfg.BaselineAvg != 5 {
		t.Errorf("cfg.BaselineAvg = %d, want built-in default 5 untouched", cfg.BaselineAvg)
	}
}

func TestBuildConfigCarriesCliFlagsThrough(t *testing.T) {
	dir := t.TempDir()
	cli := &cliFlags{suite: dir, subject: "/usr/bin/fake", arguments: "-i", baseline: true, calibrate: true, verbose: true}

	cfg, err := buildConfig(cli)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.Subject != "/usr/bin/fake" || cfg.Arguments != "-i" || !cfg.Baseline || !cfg.Calibrate || !cfg.Verbose {
		t.Errorf("buildConfig() = %+v, want CLI flags carried through unchanged", cfg)
	}
}
