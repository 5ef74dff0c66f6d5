// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing

import (
	"strconv"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/csvseries"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/stats"
)

var runtimeCSVHeader = []string{"timestamp", "samples", "runtime_ns", "expense_curr", "delta_ms"}
var expenseCSVHeader = []string{"timestamp", "samples", "expense"}

// TimingTestData holds one test case's two persisted CSV tables: the
// per-run runtime series, and the expense baseline series that is only
// appended to on an explicit calibration capture.
type TimingTestData struct {
	runtimePath, expensePath string
	runtime, expense         *csvseries.Series
}

// LoadTimingTestData reads (or initializes) the runtime and expense
// series for one case's CSV files, bounding future appends to
// timingsKeep and baselineKeep rows respectively.
func LoadTimingTestData(runtimePath, expensePath string, timingsKeep, baselineKeep int) (*TimingTestData, error) {
	runtime, err := csvseries.Load(runtimePath, runtimeCSVHeader, timingsKeep)
	if err != nil {
		return nil, err
	}
	expense, err := csvseries.Load(expensePath, expenseCSVHeader, baselineKeep)
	if err != nil {
		return nil, err
	}
	return &TimingTestData{runtimePath: runtimePath, expensePath: expensePath, runtime: runtime, expense: expense}, nil
}

// RunOutcome is what RecordRun computes for a single case's TimingJudgement.
type RunOutcome struct {
	DeltaMs        float64
	ExpenseCurr    float64
	Tolerance      float64
	ModelTolerance float64
}

// RecordRun appends one run's measurement to the runtime series and
// returns the figures TimingJudgement needs: delta_ms relative to the
// established expense baseline for this sample count, expenseCurr
// (today's observed expense, runtime/platform), the local tolerance
// derived from this series' own variance, and the model tolerance
// derived from the platform fit.
func (t *TimingTestData) RecordRun(now time.Time, platform PlatformModel, samples, runtimeNs int64) RunOutcome {
	platformNs := platform.Predict(float64(samples))

	var expenseCurr float64
	if platformNs > 0 {
		expenseCurr = float64(runtimeNs) / platformNs
	}

	baseline := t.baselineExpense(samples)
	var deltaMs float64
	if platformNs > 0 {
		deltaMs = (float64(runtimeNs) - platformNs*baseline) / 1e6
	}

	t.runtime.Append([]string{
		now.Format(time.RFC3339),
		strconv.FormatInt(samples, 10),
		strconv.FormatInt(runtimeNs, 10),
		strconv.FormatFloat(expenseCurr, 'g', -1, 64),
		strconv.FormatFloat(deltaMs, 'g', -1, 64),
	})

	return RunOutcome{
		DeltaMs:        deltaMs,
		ExpenseCurr:    expenseCurr,
		Tolerance:      3 * stats.StdDev(t.recentDeltas()),
		ModelTolerance: platform.ModelTolerance(baseline),
	}
}

// recentDeltas returns every delta_ms value currently held in the
// runtime series (already bounded to timingsKeep by Append).
func (t *TimingTestData) recentDeltas() []float64 {
	deltas := make([]float64, 0, len(t.runtime.Rows))
	for _, row := range t.runtime.Rows {
		if v, err := strconv.ParseFloat(row[4], 64); err == nil {
			deltas = append(deltas, v)
		}
	}
	return deltas
}

// movingAverageExpense averages expense_curr over the last n rows of
// the runtime series.
func (t *TimingTestData) movingAverageExpense(n int) float64 {
	rows := t.runtime.Last(n)
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, err := strconv.ParseFloat(row[3], 64); err == nil {
			vals = append(vals, v)
		}
	}
	return stats.Mean(vals)
}

// MovingAverages returns the expense_curr moving averages over the
// most recent 5, 10, and 50 runs.
func (t *TimingTestData) MovingAverages() (avg5, avg10, avg50 float64) {
	return t.movingAverageExpense(5), t.movingAverageExpense(10), t.movingAverageExpense(50)
}

// baselineExpense returns the most recently captured expense baseline
// for samples, or 0 if no matching configuration has ever been
// captured; RecordRun then takes the whole runtime as delta_ms and
// reports a model tolerance of 0.
func (t *TimingTestData) baselineExpense(samples int64) float64 {
	target := strconv.FormatInt(samples, 10)
	for i := len(t.expense.Rows) - 1; i >= 0; i-- {
		row := t.expense.Rows[i]
		if row[1] == target {
			v, err := strconv.ParseFloat(row[2], 64)
			if err == nil {
				return v
			}
		}
	}
	return 0
}

// RecordBaseline averages the last baselineAvg runtime rows of
// comparable configuration (identical samples) and appends a new
// expense baseline row. It is a no-op producing no row when no
// matching runs exist yet.
func (t *TimingTestData) RecordBaseline(now time.Time, platform PlatformModel, samples int64, baselineAvg int) {
	target := strconv.FormatInt(samples, 10)
	var runtimes []float64
	for i := len(t.runtime.Rows) - 1; i >= 0 && len(runtimes) < baselineAvg; i-- {
		row := t.runtime.Rows[i]
		if row[1] != target {
			continue
		}
		if v, err := strconv.ParseFloat(row[2], 64); err == nil {
			runtimes = append(runtimes, v)
		}
	}
	if len(runtimes) == 0 {
		return
	}

	avgRuntime := stats.Mean(runtimes)
	platformNs := platform.Predict(float64(samples))
	// Before the platform model is ever calibrated, Predict returns 0 and
	// there is nothing to divide by; treat the raw average runtime itself
	// as the expense-1 reference point rather than recording a baseline
	// that can never be matched by a later, calibrated expenseCurr.
	expense := 1.0
	if platformNs > 0 {
		expense = avgRuntime / platformNs
	}

	t.expense.Append([]string{now.Format(time.RFC3339), target, strconv.FormatFloat(expense, 'g', -1, 64)})
}

// Save atomically persists both CSV series to their files.
func (t *TimingTestData) Save() error {
	if err := t.runtime.Save(t.runtimePath); err != nil {
		return err
	}
	return t.expense.Save(t.expensePath)
}
