// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stats provides the descriptive and regression statistics the
// timing model needs: moving averages and standard deviation over a
// recent window of runs (via go-moremath/stats), and the platform-model
// linear fit plus weighted-trend correlation, worked directly against
// math so the numbers stay verifiably exact against the documented
// formulas rather than routed through a general-purpose regression API.
package stats

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return moremath.Mean(xs)
}

// StdDev returns the sample standard deviation of xs (Bessel-corrected),
// or 0 when fewer than two points are given.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return moremath.StdDev(xs)
}

// LinearFit is the result of fitting y = intercept + slope*x by ordinary
// least squares.
type LinearFit struct {
	Intercept float64
	Slope     float64
	// SDevResidual is the root-mean-square of the residuals
	// y_i - (intercept + slope*x_i), multiplied by the Bessel-like factor
	// k = n/(n-1) when n > 2.
	SDevResidual float64
	MaxResidual  float64
	N            int
}

// FitLinear performs ordinary least squares regression of ys against
// xs. It is hand-rolled against math rather than a library regression
// call, so the platform model's socket/speed/tolerance numbers are
// exactly reproducible from the closed-form formulas.
func FitLinear(xs, ys []float64) LinearFit {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return LinearFit{}
	}
	if n == 1 {
		return LinearFit{Intercept: ys[0], Slope: 0, N: 1}
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}

	var slope float64
	if sxx != 0 {
		slope = sxy / sxx
	}
	intercept := meanY - slope*meanX

	var sumSqResid, maxResid float64
	for i := range xs {
		resid := ys[i] - (intercept + slope*xs[i])
		sumSqResid += resid * resid
		if abs := math.Abs(resid); abs > maxResid {
			maxResid = abs
		}
	}

	k := 1.0
	if n > 2 {
		k = float64(n) / float64(n-1)
	}
	sdev := math.Sqrt(sumSqResid/float64(n)) * k

	return LinearFit{
		Intercept:    intercept,
		Slope:        slope,
		SDevResidual: sdev,
		MaxResidual:  maxResid,
		N:            n,
	}
}

// Correlation returns the Pearson product-moment correlation coefficient
// between xs and ys; 0 when fewer than two points are given or either
// series has zero variance.
func Correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	meanX := Mean(xs)
	meanY := Mean(ys)

	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}
