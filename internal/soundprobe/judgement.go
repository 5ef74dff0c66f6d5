// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package soundprobe

import (
	"math"
	"os"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
)

// Thresholds for SoundJudgement, per the external contract.
const (
	diffWarnLevel  = -200.0 // below: numeric noise, GREEN
	diffErrorLevel = -100.0 // between warn and error: WARNING; above: VIOLATION
	faintProbeDBFS = -60.0  // probe average RMS below this: WARNING "faint probe"
)

// Judge classifies a probe that has already had BuildDiff run against
// baselinePath (the same path, re-checked here only for presence so a
// missing baseline is reported with the right reason even if BuildDiff
// already failed once).
func Judge(p *Probe, baselinePath string) model.Result {
	if _, err := os.Stat(baselinePath); err != nil {
		if os.IsNotExist(err) {
			return model.Result{Code: model.VIOLATION, Summary: "baseline not present"}
		}
		return model.Result{Code: model.MALFUNCTION, Summary: "baseline unreadable: " + err.Error()}
	}
	if p.Residual == nil {
		return model.Result{Code: model.MALFUNCTION, Summary: "no residual computed"}
	}

	probeDBFS := dBFS(p.AvgRMS)
	if probeDBFS < faintProbeDBFS {
		return model.Result{Code: model.WARNING, Summary: "faint probe"}
	}

	level := p.Residual.PeakRMSdBFS
	switch {
	case level <= diffWarnLevel || math.IsInf(level, -1):
		return model.Result{Code: model.GREEN, Summary: "residual within numeric noise"}
	case level <= diffErrorLevel:
		return model.Result{Code: model.WARNING, Summary: "residual elevated"}
	default:
		return model.Result{Code: model.VIOLATION, Summary: "residual exceeds tolerance"}
	}
}

// dBFS expresses a linear-domain RMS amplitude (full scale = 1.0) in
// decibels. Silence maps to -inf.
func dBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(amplitude)
}
