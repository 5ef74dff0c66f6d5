// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package timing implements the per-test runtime/expense series, the
// cross-suite linear platform model fitted from them, and the
// judgements (per-case tolerance band, suite-wide trend) derived from
// both.
package timing

import (
	"math"
	"strconv"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/csvseries"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/stats"
)

// PlatformModel is the linear runtime predictor `runtime = socket +
// speed*samples`, fitted once per calibration run across every case's
// most recent expense-normalised data point.
type PlatformModel struct {
	Socket    float64
	Speed     float64
	SDevDelta float64
	MaxDelta  float64
	N         int
	FittedAt  time.Time
}

// Calibrated reports whether the model has ever been fit.
func (m PlatformModel) Calibrated() bool {
	return m.N > 0
}

// Predict returns the expected runtime in nanoseconds for samples,
// or 0 when the model is uncalibrated -- an uncalibrated model
// degrades every downstream timing judgement to WARNING "missing
// calibration" rather than raising an error.
func (m PlatformModel) Predict(samples float64) float64 {
	if !m.Calibrated() {
		return 0
	}
	return m.Socket + m.Speed*samples
}

// ModelTolerance is the cross-case tolerance band derived from the
// fit: modelTolerance = 3*sdevDelta*expense, where SDevDelta already
// carries the k = n/(n-1) correction FitPlatformModel applies when it
// derives SDevDelta from the fit's residuals, so here it only needs to
// scale by the current case's expense factor.
func (m PlatformModel) ModelTolerance(expense float64) float64 {
	if !m.Calibrated() {
		return 0
	}
	return 3 * m.SDevDelta * expense
}

// CalibrationPoint is one case's contribution to a platform fit:
// its sample count, measured runtime, and current expense factor.
type CalibrationPoint struct {
	Samples float64
	Runtime float64
	Expense float64
}

// FitPlatformModel regresses runtime/expense against samples (the
// local expense factor normalised out before fitting), and reports
// the fit's residual spread in the same delta_ms units TimingJudgement
// consumes.
func FitPlatformModel(points []CalibrationPoint, now time.Time) PlatformModel {
	var xs, ys []float64
	for _, p := range points {
		if p.Expense == 0 {
			continue
		}
		xs = append(xs, p.Samples)
		ys = append(ys, p.Runtime/p.Expense)
	}
	if len(xs) == 0 {
		return PlatformModel{FittedAt: now}
	}

	fit := stats.FitLinear(xs, ys)

	var deltas []float64
	idx := 0
	for _, p := range points {
		if p.Expense == 0 {
			continue
		}
		predicted := fit.Intercept + fit.Slope*xs[idx]
		residual := ys[idx] - predicted
		deltas = append(deltas, p.Expense*residual/1e6)
		idx++
	}

	// Same Bessel-like correction FitLinear applies to its own residual
	// spread, applied here to the expense-scaled deltas so ModelTolerance
	// sees modelTolerance = 3*sdevDelta*expense*k as documented.
	k := 1.0
	if n := len(xs); n > 2 {
		k = float64(n) / float64(n-1)
	}

	return PlatformModel{
		Socket:    fit.Intercept,
		Speed:     fit.Slope,
		SDevDelta: stats.StdDev(deltas) * k,
		MaxDelta:  maxAbs(deltas),
		N:         len(xs),
		FittedAt:  now,
	}
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// platformCSVHeader is the header row of Suite-platform.csv.
var platformCSVHeader = []string{"fitted_at", "socket", "speed", "sdev_delta", "max_delta", "n"}

// LoadPlatformModel reads the most recent row of the platform CSV at
// path, returning an uncalibrated model if the file is absent or empty.
func LoadPlatformModel(path string) (PlatformModel, error) {
	series, err := csvseries.Load(path, platformCSVHeader, 0)
	if err != nil {
		return PlatformModel{}, err
	}
	if len(series.Rows) == 0 {
		return PlatformModel{}, nil
	}
	row := series.Rows[len(series.Rows)-1]
	fittedAt, _ := time.Parse(time.RFC3339, row[0])
	socket, _ := strconv.ParseFloat(row[1], 64)
	speed, _ := strconv.ParseFloat(row[2], 64)
	sdev, _ := strconv.ParseFloat(row[3], 64)
	maxDelta, _ := strconv.ParseFloat(row[4], 64)
	n, _ := strconv.Atoi(row[5])
	return PlatformModel{Socket: socket, Speed: speed, SDevDelta: sdev, MaxDelta: maxDelta, N: n, FittedAt: fittedAt}, nil
}

// Save appends the model's fit as a new row to the platform CSV at
// path, atomically.
func (m PlatformModel) Save(path string) error {
	series, err := csvseries.Load(path, platformCSVHeader, 0)
	if err != nil {
		return err
	}
	series.Append([]string{
		m.FittedAt.Format(time.RFC3339),
		strconv.FormatFloat(m.Socket, 'g', -1, 64),
		strconv.FormatFloat(m.Speed, 'g', -1, 64),
		strconv.FormatFloat(m.SDevDelta, 'g', -1, 64),
		strconv.FormatFloat(m.MaxDelta, 'g', -1, 64),
		strconv.Itoa(m.N),
	})
	return series.Save(path)
}
