// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package mould builds and runs the step graph that drives a single test
// case from spec to Result: spawning the subject, feeding it an optional
// script, capturing its audio and timing, judging both, and persisting
// the resulting statistics. CliMould wires the full graph; Lv2Mould is a
// reserved stub.
package mould

import (
	"regexp"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/progress"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/soundprobe"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/spawn"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/watcher"
)

// State is a case's position in the case lifecycle, from launch through cleanup.
type State int

const (
	Pending State = iota
	Launched
	Ready
	Scripted
	Invoked
	Observed
	Judged
	Summarised
	Cleaned

	// Terminal early-exit states.
	LaunchFailed
	TimedOut
	Crashed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Launched:
		return "LAUNCHED"
	case Ready:
		return "READY"
	case Scripted:
		return "SCRIPTED"
	case Invoked:
		return "INVOKED"
	case Observed:
		return "OBSERVED"
	case Judged:
		return "JUDGED"
	case Summarised:
		return "SUMMARISED"
	case Cleaned:
		return "CLEANED"
	case LaunchFailed:
		return "LAUNCH_FAILED"
	case TimedOut:
		return "TIMED_OUT"
	case Crashed:
		return "CRASHED"
	default:
		return "UNKNOWN"
	}
}

// Subject CLI protocol markers. completeRe's "samples" group is optional:
// OutputObservation mines {runtime_ns, samples} from whichever of these
// the subject's completion line actually reports.
var (
	bannerRe   = regexp.MustCompile(`Yay! We're up and running :\)`)
	completeRe = regexp.MustCompile(`^TEST::Complete\b(?:.*?\bsamples\s+(?P<samples>\d+))?.*\bruntime\s+(?P<runtime>\d+)\s+ns`)
)

// Case carries the mutable state threaded through one test case's step
// sequence. Steps are free functions taking *Case rather than methods on
// many small step types, since the graph's ordering and optionality live
// in the builder (cli_mould.go), not in dynamic dispatch between steps.
type Case struct {
	Spec model.TestSpec

	State State

	Progress *progress.Log
	Handle   *spawn.Handle
	Watcher  *watcher.Watcher

	Samples   int64
	RuntimeNs int64

	Probe *soundprobe.Probe

	TimingData    *timing.TimingTestData
	TimingOutcome timing.RunOutcome

	Result model.Result

	malfunctioned bool
}

// newCase starts a fresh case in PENDING state, with its own progress log.
func newCase(spec model.TestSpec) *Case {
	return &Case{
		Spec:     spec,
		State:    Pending,
		Progress: progress.New(time.Time{}),
		Result:   model.Result{Code: model.GREEN, Topic: spec.Topic()},
	}
}

// fail short-circuits the remaining steps with the given Result and
// transitions to the matching terminal state.
func (c *Case) fail(state State, result model.Result) {
	result.Topic = c.Spec.Topic()
	c.State = state
	c.Result = result
	c.malfunctioned = true
}

// Malfunctioned reports whether an earlier step already failed the case;
// later "maybe" steps consult this to short-circuit with a Result noting
// the earlier failure rather than attempting further work.
func (c *Case) Malfunctioned() bool {
	return c.malfunctioned
}
