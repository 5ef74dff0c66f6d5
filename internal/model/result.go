// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package model holds the data types shared across the test runner: the
// traffic-light Result a case is judged into, the insertion-ordered TestLog
// that aggregates them, and the TestSpec map that describes a case.
package model

import "fmt"

// Code is the traffic-light classification of a single case.
type Code int

const (
	// GREEN means the case ran and every judgement passed.
	GREEN Code = iota
	// WARNING means the case ran but a judgement flagged a soft deviation.
	WARNING
	// VIOLATION means the case ran but a judgement flagged a hard deviation.
	VIOLATION
	// MALFUNCTION means the scaffolding itself failed: spawn, timeout,
	// unexpected EOF, or an invariant violation.
	MALFUNCTION
	// DEBACLE is reserved for failures raised outside any case, such as an
	// unreadable defaults file or a missing suite root.
	DEBACLE
)

func (c Code) String() string {
	switch c {
	case GREEN:
		return "GREEN"
	case WARNING:
		return "WARNING"
	case VIOLATION:
		return "VIOLATION"
	case MALFUNCTION:
		return "MALFUNCTION"
	case DEBACLE:
		return "DEBACLE"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps a Code to the process exit code defined in the external
// CLI contract.
func (c Code) ExitCode() int {
	return int(c)
}

// Worse reports whether c is strictly more severe than other.
func (c Code) Worse(other Code) bool {
	return c > other
}

// Stats is the per-case numeric payload attached to a Result once the case
// has actually run to a conclusion. Its presence on a Result is the
// canonical signal that the case counts toward TestLog.CountTests.
type Stats struct {
	Topic          string
	RuntimeMs      float64
	Samples        int64
	DeltaMs        float64
	Expense        float64
	Tolerance      float64
	ModelTolerance float64
}

// Result is the outcome of a single test case. Topic identifies the case
// even when it never ran far enough to attach Stats.
type Result struct {
	Code    Code
	Topic   string
	Summary string
	Stats   *Stats
}

// HasStats reports whether this Result's case ran to a conclusion.
func (r Result) HasStats() bool {
	return r.Stats != nil
}

func malformed(code Code, format string, args ...any) Result {
	return Result{Code: code, Summary: fmt.Sprintf(format, args...)}
}

// Malfunction builds a MALFUNCTION Result with the given reason.
func Malfunction(format string, args ...any) Result {
	return malformed(MALFUNCTION, format, args...)
}

// Debacle builds a DEBACLE Result with the given reason.
func Debacle(format string, args ...any) Result {
	return malformed(DEBACLE, format, args...)
}
