// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing_test

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
)

func TestFitPlatformModelOnExactLinearData(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	points := []timing.CalibrationPoint{
		{Samples: 256, Runtime: 1_256_000, Expense: 1},
		{Samples: 512, Runtime: 1_512_000, Expense: 1},
		{Samples: 1024, Runtime: 2_024_000, Expense: 1},
	}
	model := timing.FitPlatformModel(points, now)

	if !model.Calibrated() {
		t.Fatal("Calibrated() = false, want true")
	}
	if math.Abs(model.Socket-1_000_000) > 1 {
		t.Errorf("Socket = %v, want ~1000000", model.Socket)
	}
	if math.Abs(model.Speed-1000) > 1e-6 {
		t.Errorf("Speed = %v, want ~1000", model.Speed)
	}
	if model.SDevDelta > 1e-6 {
		t.Errorf("SDevDelta = %v, want ~0 for noiseless data", model.SDevDelta)
	}
}

func TestFitPlatformModelSkipsZeroExpensePoints(t *testing.T) {
	points := []timing.CalibrationPoint{
		{Samples: 256, Runtime: 1000, Expense: 0},
	}
	model := timing.FitPlatformModel(points, time.Now())
	if model.Calibrated() {
		t.Error("Calibrated() = true, want false when all points have zero expense")
	}
}

func TestPredictUncalibratedModelReturnsZero(t *testing.T) {
	var model timing.PlatformModel
	if got := model.Predict(1024); got != 0 {
		t.Errorf("Predict() = %v, want 0 for uncalibrated model", got)
	}
}

func TestSaveAndLoadPlatformModelRoundTrips(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "Suite-platform.csv")
	m := timing.PlatformModel{Socket: 1000, Speed: 2.5, SDevDelta: 0.1, MaxDelta: 0.3, N: 5, FittedAt: now}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := timing.LoadPlatformModel(path)
	if err != nil {
		t.Fatalf("LoadPlatformModel failed: %v", err)
	}
	if reloaded.Socket != m.Socket || reloaded.Speed != m.Speed || reloaded.N != m.N {
		t.Errorf("LoadPlatformModel() = %+v, want %+v", reloaded, m)
	}
}

func TestLoadPlatformModelMissingFileIsUncalibrated(t *testing.T) {
	model, err := timing.LoadPlatformModel(filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("LoadPlatformModel failed: %v", err)
	}
	if model.Calibrated() {
		t.Error("Calibrated() = true, want false for missing file")
	}
}
