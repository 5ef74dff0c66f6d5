// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package mould

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/soundprobe"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/spawn"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/watcher"
)

var promptRe = regexp.MustCompile(`yoshimi>.*`)

// exeLauncher locates the executable, spawns it, and blocks for the
// subject's banner with the per-case timeout. On timeout or early exit
// the child is killed and the case fails with MALFUNCTION.
func exeLauncher(c *Case, subject string, argv []string, workDir string, timeout time.Duration) {
	handle, err := spawn.Launch(subject, argv, workDir, nil)
	if err != nil {
		c.fail(LaunchFailed, model.Malfunction("failed to launch %q: %v", subject, err))
		return
	}
	c.Handle = handle
	c.Watcher = watcher.New(handle, c.Progress)
	c.State = Launched

	done := c.Watcher.Matcher().On(watcher.Regexp(bannerRe)).Activate()
	select {
	case err := <-done:
		if err != nil {
			c.fail(LaunchFailed, model.Malfunction("subject exited before reaching ready banner: %v", err))
			return
		}
		c.State = Ready
	case <-time.After(timeout):
		c.Watcher.Kill()
		c.fail(TimedOut, model.Malfunction("timed out after %s waiting for subject banner", timeout))
	}
}

// prepareTestScript streams the Test.Script block, when one is wired,
// into the child's stdin line by line, then blocks for the subject's
// prompt to reappear as the script-finished marker. It is a no-op when
// no script is present.
func prepareTestScript(c *Case, timeout time.Duration) {
	if c.Malfunctioned() {
		return
	}
	script, ok := c.Spec.Get(model.KeyScript)
	if !ok || strings.TrimSpace(script) == "" {
		return
	}

	done := c.Watcher.Matcher().On(watcher.Regexp(promptRe)).Activate()
	for _, line := range strings.Split(strings.TrimRight(script, "\n"), "\n") {
		if err := c.Watcher.Send(line); err != nil {
			c.fail(Crashed, model.Malfunction("failed to send script line %q: %v", line, err))
			return
		}
	}

	select {
	case err := <-done:
		if err != nil {
			c.fail(Crashed, model.Malfunction("subject exited while running test script: %v", err))
			return
		}
		c.State = Scripted
	case <-time.After(timeout):
		c.Watcher.Kill()
		c.fail(TimedOut, model.Malfunction("timed out after %s waiting for script to finish", timeout))
	}
}

// invocation blocks for the subject's exit with the per-case timeout and
// records its exit code; a nonzero exit is a crash, not a judgement.
func invocation(c *Case, timeout time.Duration) {
	if c.Malfunctioned() {
		return
	}
	code, err := c.Watcher.RetrieveExitCode(timeout)
	if err != nil {
		c.fail(TimedOut, model.Malfunction("timed out after %s waiting for subject to exit", timeout))
		return
	}
	if code != 0 {
		c.fail(Crashed, model.Malfunction("subject exited with code %d", code))
		return
	}
	c.State = Invoked
}

// soundObservation reads the raw PCM the subject wrote and wraps it in a
// Probe, computing its average RMS eagerly.
func soundObservation(c *Case, sampleRate int, rawPath string) {
	if c.Malfunctioned() {
		return
	}
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		c.fail(Crashed, model.Malfunction("failed to read probe PCM %q: %v", rawPath, err))
		return
	}
	probe, err := soundprobe.New(sampleRate, raw)
	if err != nil {
		c.fail(Crashed, model.Malfunction("failed to parse probe PCM %q: %v", rawPath, err))
		return
	}
	c.Probe = probe
}

// outputObservation mines the captured progress log for the
// TEST::Complete marker and records the reported runtime and, when the
// subject reports it, the sample count the run was measured over.
func outputObservation(c *Case) {
	if c.Malfunctioned() {
		return
	}
	matches := c.Progress.Grep(completeRe)
	if len(matches) == 0 {
		c.fail(Crashed, model.Malfunction("TEST::Complete marker not found in subject output"))
		return
	}
	last := matches[len(matches)-1]
	groups := completeRe.FindStringSubmatch(last)

	runtimeNs, err := strconv.ParseInt(groups[completeRe.SubexpIndex("runtime")], 10, 64)
	if err != nil {
		c.fail(Crashed, model.Malfunction("unparseable runtime in %q: %v", last, err))
		return
	}
	c.RuntimeNs = runtimeNs

	if samples := groups[completeRe.SubexpIndex("samples")]; samples != "" {
		if n, err := strconv.ParseInt(samples, 10, 64); err == nil {
			c.Samples = n
		}
	}
}

// timingObservation marks the observation phase complete once both the
// sound probe (if wired) and the timing figures have been gathered.
func timingObservation(c *Case) {
	if c.Malfunctioned() {
		return
	}
	c.State = Observed
}

// soundJudgement runs BuildDiff against baselinePath and folds its
// verdict into the case's running Result, keeping whichever is worse.
func soundJudgement(c *Case, baselinePath string) {
	if c.Malfunctioned() {
		return
	}
	if err := c.Probe.BuildDiff(baselinePath); err != nil {
		if os.IsNotExist(err) {
			c.mergeResult(model.Result{Code: model.VIOLATION, Summary: "baseline not present"})
			return
		}
		if _, ok := err.(*soundprobe.ErrShapeMismatch); ok {
			c.mergeResult(model.Result{Code: model.VIOLATION, Summary: err.Error()})
			return
		}
		c.fail(Crashed, model.Malfunction("sound diff against %q failed: %v", baselinePath, err))
		return
	}
	c.mergeResult(soundprobe.Judge(c.Probe, baselinePath))
}

// timingJudgement folds the platform-model-relative timing verdict into
// the case's running Result.
func timingJudgement(c *Case, calibrated bool) {
	if c.Malfunctioned() {
		return
	}
	c.mergeResult(timing.Judge(c.TimingOutcome, calibrated))
}

// trendPersistTrigger atomically saves this case's runtime/expense
// series, so the suite-wide trend judgement has fresh history to fit
// against at suite close.
func trendPersistTrigger(c *Case) {
	if c.Malfunctioned() || c.TimingData == nil {
		return
	}
	if err := c.TimingData.Save(); err != nil {
		c.mergeResult(model.Result{Code: model.MALFUNCTION, Summary: fmt.Sprintf("failed to persist timing series: %v", err)})
	}
}

// summary attaches the case's Stats payload -- the signal TestLog counts
// toward cntTests -- unless an earlier step already failed the case
// outright (a MALFUNCTION before the case ever ran carries no stats).
func summary(c *Case) {
	if c.Malfunctioned() {
		return
	}
	c.Result.Stats = &model.Stats{
		Topic:          c.Spec.Topic(),
		RuntimeMs:      float64(c.RuntimeNs) / 1e6,
		Samples:        c.Samples,
		DeltaMs:        c.TimingOutcome.DeltaMs,
		Expense:        c.TimingOutcome.ExpenseCurr,
		Tolerance:      c.TimingOutcome.Tolerance,
		ModelTolerance: c.TimingOutcome.ModelTolerance,
	}
	c.State = Summarised
}

// cleanUp releases every resource scoped to this case: the watcher's
// pipes and goroutines, the probe's sample buffers, and the progress
// log, regardless of how the case ended.
func cleanUp(c *Case) {
	if c.Watcher != nil {
		c.Watcher.Close()
	}
	if c.Probe != nil {
		c.Probe.DiscardStorage()
	}
	c.Progress.ClearLog()
	c.State = Cleaned
}

// mergeResult keeps whichever of the case's current Result and next is
// the more severe, per Code.Worse.
func (c *Case) mergeResult(next model.Result) {
	if next.Code.Worse(c.Result.Code) {
		next.Topic = c.Spec.Topic()
		c.Result = next
	}
}
