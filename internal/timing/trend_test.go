// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
)

func TestTrendJudgeWithFlatHistoryIsGreen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Suite-statistic.csv")
	trend, err := timing.LoadTrendData(path, 100)
	if err != nil {
		t.Fatalf("LoadTrendData failed: %v", err)
	}
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		trend.RecordRun(now.Add(time.Duration(i)*time.Hour), 1.0)
	}

	judgement := timing.Judge(trend, 1.0, 0.2, 0.5, 0.1, 5, 10)
	if judgement.Result.Code != model.GREEN {
		t.Errorf("Judge().Result = %+v, want GREEN for a flat history", judgement.Result)
	}
}

func TestTrendJudgeWithRisingHistoryFlagsDeviation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Suite-statistic.csv")
	trend, err := timing.LoadTrendData(path, 100)
	if err != nil {
		t.Fatalf("LoadTrendData failed: %v", err)
	}
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		trend.RecordRun(now.Add(time.Duration(i)*time.Hour), float64(i)*10)
	}

	judgement := timing.Judge(trend, 90, 0.1, 0.1, 0.1, 5, 10)
	if judgement.Result.Code == model.GREEN {
		t.Errorf("Judge().Result = %+v, want a flagged trend for a steadily rising history", judgement.Result)
	}
}

func TestTrendJudgeWithInsufficientHistoryIsGreen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Suite-statistic.csv")
	trend, err := timing.LoadTrendData(path, 100)
	if err != nil {
		t.Fatalf("LoadTrendData failed: %v", err)
	}
	trend.RecordRun(time.Now().Add(-time.Hour), 1.0)

	judgement := timing.Judge(trend, 1.0, 0, 0.5, 0.1, 5, 10)
	if judgement.Result.Code != model.GREEN {
		t.Errorf("Judge().Result = %+v, want GREEN with only one historical point", judgement.Result)
	}
}

func TestSaveAndReloadTrendData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Suite-statistic.csv")
	trend, err := timing.LoadTrendData(path, 100)
	if err != nil {
		t.Fatalf("LoadTrendData failed: %v", err)
	}
	trend.RecordRun(time.Now().Add(-time.Hour), 2.5)
	if err := trend.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := timing.LoadTrendData(path, 100); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
}
