// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/orchestrator"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/specfile"
)

// cliFlags holds the values pflag parses directly off the command line,
// before they are layered over defaults.ini/setup.ini into an
// orchestrator.Config.
type cliFlags struct {
	suite     string
	subject   string
	arguments string
	baseline  bool
	calibrate bool
	verbose   bool
	report    string
}

func registerFlags(flags *pflag.FlagSet) *cliFlags {
	f := &cliFlags{}
	flags.StringVar(&f.suite, "suite", ".", "root directory of the test suite to run")
	flags.StringVar(&f.subject, "subject", "", "override the subject executable for every case")
	flags.StringVar(&f.arguments, "arguments", "", "extra arguments appended to every case's invocation")
	flags.BoolVar(&f.baseline, "baseline", false, "record the sound probe of every case as its new baseline")
	flags.BoolVar(&f.calibrate, "calibrate", false, "refit the platform timing model from this run")
	flags.BoolVar(&f.verbose, "verbose", false, "enable verbose diagnostic logging")
	flags.StringVar(&f.report, "report", "", "write the suite report to this path instead of stdout")
	return f
}

// runnerIniValues are the subset of defaults.ini/setup.ini keys the
// runner's own configuration understands, distinct from the per-case
// TestSpec keys specfile also parses.
const (
	iniSampleRate   = "Runner.sampleRate"
	iniBaselineAvg  = "Runner.baselineAvg"
	iniTimingsKeep  = "Runner.timingsKeep"
	iniBaselineKeep = "Runner.baselineKeep"
	iniTrendKeep    = "Runner.trendKeep"
	iniShortTerm    = "Runner.trendShortTerm"
	iniLongTerm     = "Runner.trendLongTerm"
)

// defaultRunnerValues seed a RunnerConfig when neither defaults.ini,
// setup.ini, nor a flag sets them.
var defaultRunnerValues = map[string]string{
	iniSampleRate:   "48000",
	iniBaselineAvg:  "5",
	iniTimingsKeep:  "50",
	iniBaselineKeep: "20",
	iniTrendKeep:    "200",
	iniShortTerm:    "5",
	iniLongTerm:     "50",
}

// buildConfig merges defaults.ini < setup.ini < CLI flags into the
// orchestrator's Config, the same left-biased layering TestSpec keys go
// through.
func buildConfig(f *cliFlags) (orchestrator.Config, error) {
	layered, err := specfile.LoadLayered(
		filepath.Join(f.suite, "defaults.ini"),
		filepath.Join(f.suite, "setup.ini"),
	)
	if err != nil {
		return orchestrator.Config{}, err
	}
	values := specfile.Merge(defaultRunnerValues, layered)

	return orchestrator.Config{
		SuiteRoot:    f.suite,
		Subject:      f.subject,
		Arguments:    f.arguments,
		Baseline:     f.baseline,
		Calibrate:    f.calibrate,
		Verbose:      f.verbose,
		SampleRate:   atoiOr(values[iniSampleRate], 48000),
		BaselineAvg:  atoiOr(values[iniBaselineAvg], 5),
		TimingsKeep:  atoiOr(values[iniTimingsKeep], 50),
		BaselineKeep: atoiOr(values[iniBaselineKeep], 20),
		TrendKeep:    atoiOr(values[iniTrendKeep], 200),
		ShortTerm:    atoiOr(values[iniShortTerm], 5),
		LongTerm:     atoiOr(values[iniLongTerm], 50),
	}, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
