// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing

import (
	"math"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
)

// missingCalibrationNote is attached whenever a judgement degrades
// because the platform model has never been fit.
const missingCalibrationNote = "missing calibration"

// Judge classifies one case's RunOutcome against its baseline:
// overallTolerance = max(tolerance, modelTolerance); delta below
// -overallTolerance is a (harmless) WARNING "faster than baseline",
// moderately above is WARNING "slightly above baseline", and clearly
// above is a VIOLATION.
func Judge(o RunOutcome, calibrated bool) model.Result {
	overallTolerance := math.Max(o.Tolerance, o.ModelTolerance)

	if !calibrated {
		return model.Result{Code: model.WARNING, Summary: missingCalibrationNote}
	}

	switch {
	case o.DeltaMs < -overallTolerance:
		return model.Result{Code: model.WARNING, Summary: "faster than baseline"}
	case o.DeltaMs <= 1.1*overallTolerance:
		if o.DeltaMs > overallTolerance {
			return model.Result{Code: model.WARNING, Summary: "slightly above baseline"}
		}
		return model.Result{Code: model.GREEN}
	default:
		return model.Result{Code: model.VIOLATION, Summary: "runtime exceeds baseline"}
	}
}
