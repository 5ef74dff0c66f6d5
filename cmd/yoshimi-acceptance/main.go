// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command yoshimi-acceptance runs a suite of acceptance test cases
// against the yoshimi softsynth: it discovers every *.test case under
// --suite, spawns the subject per case, judges its audio and timing
// against stored baselines, and reports the worst result as its exit
// code.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/orchestrator"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	// glog registers its own flags on the standard flag package; fold
	// them into pflag's set so --verbose et al. share one -h listing.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	cli := registerFlags(pflag.CommandLine)
	pflag.Parse()
	defer glog.Flush()

	if cli.verbose {
		_ = flag.Set("v", "2")
	}

	cfg, err := buildConfig(cli)
	if err != nil {
		glog.Errorf("failed to load runner configuration: %v", err)
		return model.DEBACLE.ExitCode()
	}

	log, _, trend, err := orchestrator.New(cfg).Run()
	if log == nil {
		glog.Errorf("suite could not be run: %v", err)
		return model.DEBACLE.ExitCode()
	}
	if err != nil {
		glog.Errorf("suite close encountered errors: %v", err)
	}

	out := os.Stdout
	if cli.report != "" {
		f, ferr := os.Create(cli.report)
		if ferr != nil {
			glog.Errorf("failed to open report file %q: %v", cli.report, ferr)
			return model.DEBACLE.ExitCode()
		}
		defer f.Close()
		if renderErr := report.Render(log, trend, f); renderErr != nil {
			glog.Errorf("failed to write report: %v", renderErr)
			return model.DEBACLE.ExitCode()
		}
	} else if renderErr := report.Render(log, trend, out); renderErr != nil {
		glog.Errorf("failed to write report: %v", renderErr)
		return model.DEBACLE.ExitCode()
	}

	if err != nil {
		return model.DEBACLE.ExitCode()
	}

	worst := log.WorstCode()
	if worst == model.DEBACLE {
		fmt.Fprintln(os.Stderr, "suite encountered a failure outside any case")
	}
	return worst.ExitCode()
}
