// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package orchestrator walks a suite directory, runs every case it finds
// through the matching Mould, and closes the suite by persisting the
// platform model (on --calibrate) and the trend statistics derived from
// this run's deltas.
package orchestrator

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang/glog"
	"go.uber.org/multierr"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/mould"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/progress"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/specfile"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/stats"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
)

// testFileSuffix identifies a case definition within the suite tree;
// defaults.ini and setup.ini are layered configuration, not cases.
const testFileSuffix = ".test"

// Config is the merged, suite-independent configuration a run is
// materialised from -- the runner's own flags and ini layers collapsed
// by the CLI layer into one value.
type Config struct {
	SuiteRoot    string
	Subject      string
	Arguments    string
	Baseline     bool
	Calibrate    bool
	Verbose      bool
	SampleRate   int
	BaselineAvg  int
	TimingsKeep  int
	BaselineKeep int
	TrendKeep    int
	ShortTerm    int
	LongTerm     int
}

// CaseOutcome carries a case's Result alongside the directory of its
// .test file (under SuiteRoot, so absolute only when SuiteRoot is), so a
// report can resolve fileResidual/fileProbe paths relative to the case
// that produced them.
type CaseOutcome struct {
	Result model.Result
	Dir    string
}

// Orchestrator runs one suite discovery-and-execution cycle.
type Orchestrator struct {
	cfg Config
}

// New returns an Orchestrator configured for one run.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

func (o *Orchestrator) platformPath() string {
	return filepath.Join(o.cfg.SuiteRoot, "Suite-platform.csv")
}

func (o *Orchestrator) trendPath() string {
	return filepath.Join(o.cfg.SuiteRoot, "Suite-statistic.csv")
}

// discoverCases walks SuiteRoot for *.test files and returns their paths
// in a stable, lexicographically sorted order.
func (o *Orchestrator) discoverCases() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(o.cfg.SuiteRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == testFileSuffix {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Run walks the suite, runs every case, and closes the suite's
// persistent state. It returns the aggregated log, the outcomes (for a
// report that needs per-case directories), the suite's trend judgement
// (nil if no case produced timing statistics), and any errors raised
// outside of a single case -- each independently surfaced via multierr,
// never silently dropped.
func (o *Orchestrator) Run() (*model.TestLog, []CaseOutcome, *timing.TrendJudgement, error) {
	var errs error

	layered, err := specfile.LoadLayered(
		filepath.Join(o.cfg.SuiteRoot, "defaults.ini"),
		filepath.Join(o.cfg.SuiteRoot, "setup.ini"),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load suite configuration: %w", err)
	}

	platform, err := timing.LoadPlatformModel(o.platformPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load platform model: %w", err)
	}

	builder := mould.NewCliMouldBuilder(o.cfg.SampleRate, o.cfg.BaselineAvg, o.cfg.TimingsKeep, o.cfg.BaselineKeep).
		WithProgress(progress.New(time.Time{})).
		WithTimings(&platform).
		RecordBaseline(o.cfg.Baseline).
		Calibrate(o.cfg.Calibrate)
	if o.cfg.Subject != "" || o.cfg.Arguments != "" {
		builder = builder.WithSubjectOverride(o.cfg.Subject, o.cfg.Arguments)
	}
	cliMould := mould.NewCliMould(builder)
	lv2Mould := mould.Lv2Mould{}

	paths, err := o.discoverCases()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to walk suite directory %q: %w", o.cfg.SuiteRoot, err)
	}
	glog.V(1).Infof("discovered %d test case(s) under %s", len(paths), o.cfg.SuiteRoot)

	var log model.TestLog
	var outcomes []CaseOutcome
	var deltas, tolerances, modelTolerances []float64
	var calibrationPoints []timing.CalibrationPoint

	for _, path := range paths {
		dir := filepath.Dir(path)
		spec, err := specfile.LoadTestSpec(path, dir, layered)
		if err != nil {
			result := model.Malfunction("failed to load test spec %q: %v", path, err)
			result.Topic = dir
			log.Append(result)
			outcomes = append(outcomes, CaseOutcome{Result: result, Dir: dir})
			continue
		}

		builder.StartCycle()
		glog.V(2).Infof("running case %s", spec.Topic())

		var result model.Result
		switch spec.GetOr(model.KeyType, model.TestTypeCLI) {
		case model.TestTypeLV2:
			result = lv2Mould.RunCase(spec)
		default:
			result = cliMould.RunCase(spec)
		}
		log.Append(result)
		outcomes = append(outcomes, CaseOutcome{Result: result, Dir: dir})

		if result.HasStats() {
			if spec.Bool(model.KeyVerifyTimes) {
				deltas = append(deltas, result.Stats.DeltaMs)
				if result.Stats.Tolerance > 0 {
					tolerances = append(tolerances, result.Stats.Tolerance)
				}
				if result.Stats.ModelTolerance > 0 {
					modelTolerances = append(modelTolerances, result.Stats.ModelTolerance)
				}
			}
			if o.cfg.Calibrate {
				// Before the platform model is ever calibrated,
				// expenseCurr is gated on a model that doesn't exist
				// yet and comes back 0 -- which FitPlatformModel would
				// then filter out, leaving a cold suite's first
				// --calibrate run fitting from zero points. Seed that
				// first fit from the raw runtime/samples points
				// directly (expense=1) instead.
				expense := result.Stats.Expense
				if !platform.Calibrated() {
					expense = 1
				}
				calibrationPoints = append(calibrationPoints, timing.CalibrationPoint{
					Samples: float64(result.Stats.Samples),
					Runtime: result.Stats.RuntimeMs * 1e6,
					Expense: expense,
				})
			}
		}
	}

	if o.cfg.Calibrate && len(calibrationPoints) > 0 {
		fitted := timing.FitPlatformModel(calibrationPoints, time.Now())
		if err := fitted.Save(o.platformPath()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to persist platform model: %w", err))
		}
	}

	var trendJudgement *timing.TrendJudgement
	if len(deltas) > 0 {
		trendData, err := timing.LoadTrendData(o.trendPath(), o.cfg.TrendKeep)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to load trend statistics: %w", err))
		} else {
			avgDelta := stats.Mean(deltas)
			trendData.RecordRun(time.Now(), avgDelta)

			judgement := timing.Judge(trendData, avgDelta, stats.StdDev(deltas),
				stats.Mean(tolerances), stats.Mean(modelTolerances), o.cfg.ShortTerm, o.cfg.LongTerm)
			trendJudgement = &judgement

			if err := trendData.Save(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("failed to persist trend statistics: %w", err))
			}
		}
	}

	return &log, outcomes, trendJudgement, errs
}
