// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package mould

import "github.com/Ichthyostega/yoshimi-test-sub000/internal/model"

// Lv2Mould is reserved for Test.type = LV2 cases: driving the subject as
// an in-process LV2 plugin rather than a subprocess. Not yet built; any
// case routed here fails outright rather than silently passing.
type Lv2Mould struct{}

// RunCase always returns MALFUNCTION; LV2-hosted cases are not supported
// yet.
func (Lv2Mould) RunCase(spec model.TestSpec) model.Result {
	result := model.Malfunction("LV2 test type is not supported yet (case %q)", spec.Topic())
	result.Topic = spec.Topic()
	return result
}
