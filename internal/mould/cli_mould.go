// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package mould

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/argv"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/progress"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
)

// Mould produces a runnable case for one TestSpec.
type Mould interface {
	RunCase(spec model.TestSpec) model.Result
}

// Step is one stage of a case's graph. Steps are plain functions closed
// over the mould's configuration rather than small per-step types: the
// graph's shape and optionality live in CliMould.RunCase, not in
// dynamic dispatch between steps.
type Step func(*Case)

// StepSeq is a materialised, ordered sequence of steps for one case,
// built by CliMouldBuilder.Materialise. Optional steps that do not apply
// to this spec are simply absent from the slice, rather than present as
// null references that have to be checked at run time.
type StepSeq struct {
	kase  *Case
	steps []Step
}

// Run executes every step in order, short-circuiting the rest once the
// case has malfunctioned. Materialise always appends CleanUp last, and
// Run always runs that final step regardless, so every case releases
// its resources even after an early failure.
func (s *StepSeq) Run() model.Result {
	last := len(s.steps) - 1
	for i, step := range s.steps {
		if s.kase.Malfunctioned() && i != last {
			continue
		}
		step(s.kase)
	}
	return s.kase.Result
}

// CliMouldBuilder assembles a CliMould. Its fluent setters mirror the
// external building-block surface: with_progress, with_timings,
// record_baseline, calibrate, start_cycle, materialise.
type CliMouldBuilder struct {
	sampleRate                          int
	baselineAvg, timingsKeep, baseKeep  int
	subjectOverride, argumentsOverride  string
	workDirOverride                     string
	platform                            *timing.PlatformModel
	operatorLog                         *progress.Log
	recordBaseline, calibrate           bool
}

// NewCliMouldBuilder starts a builder for CLI-type test cases.
func NewCliMouldBuilder(sampleRate, baselineAvg, timingsKeep, baselineKeep int) *CliMouldBuilder {
	return &CliMouldBuilder{
		sampleRate:   sampleRate,
		baselineAvg:  baselineAvg,
		timingsKeep:  timingsKeep,
		baseKeep:     baselineKeep,
		platform:     &timing.PlatformModel{},
	}
}

// WithProgress installs an operator-visible progress logger, distinct
// from each case's own captured-output buffer, that steps annotate via
// Note for diagnostics such as "baseline missing".
func (b *CliMouldBuilder) WithProgress(log *progress.Log) *CliMouldBuilder {
	b.operatorLog = log
	return b
}

// WithTimings installs the platform model shared read-only across every
// case of the current run.
func (b *CliMouldBuilder) WithTimings(global *timing.PlatformModel) *CliMouldBuilder {
	b.platform = global
	return b
}

// RecordBaseline toggles whether SoundObservation's probe is captured as
// the new baseline (--baseline) instead of judged against the existing
// one.
func (b *CliMouldBuilder) RecordBaseline(v bool) *CliMouldBuilder {
	b.recordBaseline = v
	return b
}

// Calibrate toggles whether this run captures a new expense baseline
// (--calibrate) instead of judging timing against the existing one.
func (b *CliMouldBuilder) Calibrate(v bool) *CliMouldBuilder {
	b.calibrate = v
	return b
}

// WithSubjectOverride applies the runner's own --subject/--arguments
// flags to every case: a non-empty subject replaces the spec's
// Test.subject, and a non-empty arguments string is appended after the
// spec's Test.arguments/Test.addArguments.
func (b *CliMouldBuilder) WithSubjectOverride(subject, arguments string) *CliMouldBuilder {
	b.subjectOverride = subject
	b.argumentsOverride = arguments
	return b
}

// StartCycle resets any per-cycle transient state before building the
// next case's StepSeq. CliMouldBuilder carries none today beyond what
// Materialise derives fresh each call, but the hook exists so a future
// cross-case cache has somewhere defined to reset.
func (b *CliMouldBuilder) StartCycle() *CliMouldBuilder {
	return b
}

// Materialise builds the ordered step graph for spec: ExeLauncher →
// (PrepareTestScript?) → Invocation → (SoundObservation?) →
// OutputObservation → TimingObservation → (SoundJudgement?) →
// (TimingJudgement?) → TrendPersistTrigger → Summary → CleanUp.
func (b *CliMouldBuilder) Materialise(spec model.TestSpec) (*StepSeq, error) {
	kase := newCase(spec)

	subject := b.subjectOverride
	if subject == "" {
		subject = spec.GetOr(model.KeySubject, "")
	}
	args, err := argv.Concat(spec.GetOr(model.KeyArguments, ""), spec.GetOr(model.KeyAddArguments, ""))
	if err != nil {
		return nil, err
	}
	if b.argumentsOverride != "" {
		overrideArgs, err := argv.Split(b.argumentsOverride)
		if err != nil {
			return nil, err
		}
		args = append(args, overrideArgs...)
	}

	timeoutSecs, _ := strconv.Atoi(spec.GetOr(model.KeyCliTimeout, "60"))
	timeout := time.Duration(timeoutSecs) * time.Second

	workDir := b.workDirOverride
	if workDir == "" {
		workDir = spec.GetOr(model.KeyWorkDir, spec.Dir)
	}

	verifySound := spec.Bool(model.KeyVerifySound)
	verifyTimes := spec.Bool(model.KeyVerifyTimes)

	baselinePath := spec.GetOr(model.KeyFileBaseline, filepath.Join(spec.Dir, "baseline.wav"))
	probePath := spec.GetOr(model.KeyFileProbe, filepath.Join(spec.Dir, "probe.raw"))
	runtimePath := spec.GetOr(model.KeyFileRuntime, filepath.Join(spec.Dir, "case-runtime.csv"))
	expensePath := spec.GetOr(model.KeyFileExpense, filepath.Join(spec.Dir, "case-expense.csv"))

	if verifyTimes {
		timingData, err := timing.LoadTimingTestData(runtimePath, expensePath, b.timingsKeep, b.baseKeep)
		if err != nil {
			return nil, err
		}
		kase.TimingData = timingData
	}

	var steps []Step
	steps = append(steps, func(c *Case) { exeLauncher(c, subject, args, workDir, timeout) })
	steps = append(steps, func(c *Case) { prepareTestScript(c, timeout) })
	steps = append(steps, func(c *Case) { invocation(c, timeout) })
	if verifySound {
		steps = append(steps, func(c *Case) { soundObservation(c, b.sampleRate, probePath) })
	}
	steps = append(steps, outputObservation)
	if verifyTimes {
		steps = append(steps, func(c *Case) {
			timingObservation(c)
			if c.Malfunctioned() || c.TimingData == nil {
				return
			}
			c.TimingOutcome = c.TimingData.RecordRun(time.Now(), *b.platform, c.Samples, c.RuntimeNs)
		})
	} else {
		steps = append(steps, timingObservation)
	}
	if verifySound {
		steps = append(steps, func(c *Case) {
			if b.recordBaseline {
				if c.Malfunctioned() {
					return
				}
				if err := c.Probe.SaveProbe(baselinePath); err != nil {
					c.fail(Crashed, model.Malfunction("failed to record baseline %q: %v", baselinePath, err))
				}
				return
			}
			if b.operatorLog != nil {
				b.operatorLog.Note("judging sound probe for %s against %s", spec.Topic(), baselinePath)
			}
			soundJudgement(c, baselinePath)
		})
	}
	if verifyTimes {
		steps = append(steps, func(c *Case) {
			if b.calibrate {
				if c.Malfunctioned() || c.TimingData == nil {
					return
				}
				c.TimingData.RecordBaseline(time.Now(), *b.platform, c.Samples, b.baselineAvg)
				return
			}
			timingJudgement(c, b.platform.Calibrated())
		})
	}
	if verifyTimes {
		steps = append(steps, trendPersistTrigger)
	}
	steps = append(steps, summary)
	steps = append(steps, cleanUp)

	return &StepSeq{kase: kase, steps: steps}, nil
}

// CliMould runs CLI-type test cases via CliMouldBuilder-materialised
// step sequences.
type CliMould struct {
	builder *CliMouldBuilder
}

// NewCliMould wraps a configured builder as a Mould.
func NewCliMould(builder *CliMouldBuilder) *CliMould {
	return &CliMould{builder: builder}
}

// RunCase materialises and runs spec's step sequence.
func (m *CliMould) RunCase(spec model.TestSpec) model.Result {
	seq, err := m.builder.Materialise(spec)
	if err != nil {
		result := model.Malfunction("failed to build test case %q: %v", spec.Topic(), err)
		result.Topic = spec.Topic()
		return result
	}
	return seq.Run()
}
