// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/csvseries"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/stats"
)

var suiteStatisticCSVHeader = []string{"timestamp", "avg_delta_ms"}

// trendEpsilon keeps the percent-change denominator away from zero when
// both the previous and current averaged delta are themselves ~0.
const trendEpsilon = 1e-9

// TrendData is the cross-run history of suite-averaged deltas, persisted
// to Suite-statistic.csv, that TrendJudgement regresses against time.
type TrendData struct {
	path   string
	series *csvseries.Series
}

// LoadTrendData reads (or initializes) the suite statistic series,
// bounded to keep the most recent rows.
func LoadTrendData(path string, keep int) (*TrendData, error) {
	series, err := csvseries.Load(path, suiteStatisticCSVHeader, keep)
	if err != nil {
		return nil, err
	}
	return &TrendData{path: path, series: series}, nil
}

// RecordRun appends the current suite run's averaged delta.
func (t *TrendData) RecordRun(now time.Time, avgDelta float64) {
	t.series.Append([]string{now.Format(time.RFC3339), strconv.FormatFloat(avgDelta, 'g', -1, 64)})
}

// Save atomically persists the series.
func (t *TrendData) Save() error {
	return t.series.Save(t.path)
}

// previousAvgDelta returns the averaged delta of the run before the one
// just recorded, or 0 if there is no earlier run.
func (t *TrendData) previousAvgDelta() float64 {
	if len(t.series.Rows) < 2 {
		return 0
	}
	v, _ := strconv.ParseFloat(t.series.Rows[len(t.series.Rows)-2][1], 64)
	return v
}

// weightedTrend fits a line of avg_delta_ms against run sequence over
// the last window rows and returns gradient*window*|correlation|, the
// weighted-trend figure. ok is false when fewer than two rows are
// available to fit.
func (t *TrendData) weightedTrend(window int) (weighted float64, ok bool) {
	rows := t.series.Last(window)
	if len(rows) < 2 {
		return 0, false
	}
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = float64(i)
		ys[i], _ = strconv.ParseFloat(row[1], 64)
	}
	fit := stats.FitLinear(xs, ys)
	correlation := stats.Correlation(xs, ys)
	return fit.Slope * float64(len(rows)) * math.Abs(correlation), true
}

// TrendJudgement is the result of comparing the short-term and
// long-term weighted trends against the combined tolerance band.
type TrendJudgement struct {
	Result         model.Result
	WeightedTrend  float64
	PercentChange  float64
	OverallToleran float64
}

// Judge computes the suite-wide trend judgement: the combined
// tolerance band hypot(max(3*pastDeltaSDev, tolerance),
// modelTolerance), the weighted trend over shortTerm and longTerm
// windows (the more severe of the two governs the verdict), and the
// percent change of the current averaged delta relative to the
// previous run.
func Judge(t *TrendData, currAvgDelta, pastDeltaSDev, tolerance, modelTolerance float64, shortTerm, longTerm int) TrendJudgement {
	overallTolerance := math.Hypot(math.Max(3*pastDeltaSDev, tolerance), modelTolerance)

	short, shortOK := t.weightedTrend(shortTerm)
	long, longOK := t.weightedTrend(longTerm)

	var weighted float64
	switch {
	case shortOK && longOK:
		if math.Abs(short) > math.Abs(long) {
			weighted = short
		} else {
			weighted = long
		}
	case shortOK:
		weighted = short
	case longOK:
		weighted = long
	default:
		return TrendJudgement{Result: model.Result{Code: model.GREEN}, OverallToleran: overallTolerance}
	}

	previous := t.previousAvgDelta()
	denom := math.Max(math.Abs(previous), math.Abs(currAvgDelta)) + trendEpsilon
	percentChange := (currAvgDelta - previous) / denom * 100

	var result model.Result
	switch {
	case math.Abs(weighted) > 2*overallTolerance:
		result = model.Result{Code: model.VIOLATION, Summary: fmt.Sprintf("timing trend %.1f%% change exceeds tolerance", percentChange)}
	case math.Abs(weighted) > overallTolerance:
		result = model.Result{Code: model.WARNING, Summary: fmt.Sprintf("timing trend %.1f%% change approaching tolerance", percentChange)}
	default:
		result = model.Result{Code: model.GREEN}
	}

	return TrendJudgement{Result: result, WeightedTrend: weighted, PercentChange: percentChange, OverallToleran: overallTolerance}
}
