// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report renders a finished TestLog into a human-readable suite
// report: counts by traffic-light code, one line per case, and — when
// the suite tracked timing trends — the trend verdict that closed it.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/timing"
)

// codeOrder fixes the tally line's column order; model.Code's own
// ordering already runs GREEN..DEBACLE, but spelling it out here keeps
// the report's shape independent of any future reordering of the enum.
var codeOrder = []model.Code{model.GREEN, model.WARNING, model.VIOLATION, model.MALFUNCTION, model.DEBACLE}

// Render writes a suite report for log to w: a summary tally, one line
// per case, and, when trend is non-nil, the suite-wide trend verdict
// recorded at close.
func Render(log *model.TestLog, trend *timing.TrendJudgement, w io.Writer) error {
	if err := renderSummary(log, w); err != nil {
		return err
	}
	if err := renderCases(log, w); err != nil {
		return err
	}
	if trend != nil {
		if err := renderTrend(*trend, w); err != nil {
			return err
		}
	}
	return nil
}

func renderSummary(log *model.TestLog, w io.Writer) error {
	counts := log.CountByCode()
	if _, err := fmt.Fprintf(w, "%d cases run (%d recorded statistics)\n", log.Len(), log.CountTests()); err != nil {
		return err
	}
	for _, code := range codeOrder {
		if n := counts[code]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %-11s %d\n", code.String()+":", n); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "worst result: %s\n\n", log.WorstCode())
	return err
}

func renderCases(log *model.TestLog, w io.Writer) error {
	for _, r := range log.All() {
		line := fmt.Sprintf("[%-11s] %s", r.Code, r.Topic)
		if r.Summary != "" {
			line += " -- " + r.Summary
		}
		if r.HasStats() {
			line += fmt.Sprintf(" (%s)", humanizeRuntime(r.Stats.RuntimeMs))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderTrend(t timing.TrendJudgement, w io.Writer) error {
	_, err := fmt.Fprintf(w, "\nsuite trend: %s (weighted %.3f, change %.1f%%, tolerance %.3f)\n",
		t.Result.Code, t.WeightedTrend, t.PercentChange, t.OverallToleran)
	return err
}

// humanizeRuntime renders a case's runtime (given in milliseconds) the
// way humanize.RelTime spells out a duration, stripping the "ago"/"from
// now" suffixes RelTime adds when asked to compare two absolute times.
func humanizeRuntime(ms float64) string {
	start := time.Unix(0, 0)
	rel := humanize.RelTime(start, start.Add(time.Duration(ms*float64(time.Millisecond))), "", "")
	return strings.TrimSpace(rel)
}
