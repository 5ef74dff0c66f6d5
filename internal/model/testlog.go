// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package model

// TestLog is an insertion-ordered sequence of Results with O(1) append.
type TestLog struct {
	results []Result
}

// Append adds a Result at the end of the log.
func (l *TestLog) Append(r Result) {
	l.results = append(l.results, r)
}

// All returns the Results in insertion order. The returned slice must not
// be mutated by the caller.
func (l *TestLog) All() []Result {
	return l.results
}

// Len returns the number of Results recorded so far, regardless of whether
// the underlying case ran to completion.
func (l *TestLog) Len() int {
	return len(l.results)
}

// CountTests returns the number of Results whose case actually ran to a
// conclusion: |{r : r.Stats present}|.
func (l *TestLog) CountTests() int {
	n := 0
	for _, r := range l.results {
		if r.HasStats() {
			n++
		}
	}
	return n
}

// HasMalfunction reports whether any Result is a MALFUNCTION.
func (l *TestLog) HasMalfunction() bool {
	return l.hasCode(MALFUNCTION)
}

// HasViolations reports whether any Result is a VIOLATION.
func (l *TestLog) HasViolations() bool {
	return l.hasCode(VIOLATION)
}

// HasWarnings reports whether any Result is a WARNING.
func (l *TestLog) HasWarnings() bool {
	return l.hasCode(WARNING)
}

func (l *TestLog) hasCode(code Code) bool {
	for _, r := range l.results {
		if r.Code == code {
			return true
		}
	}
	return false
}

// WorstCode returns the most severe Code seen in the log, or GREEN if the
// log is empty.
func (l *TestLog) WorstCode() Code {
	worst := GREEN
	for _, r := range l.results {
		if r.Code.Worse(worst) {
			worst = r.Code
		}
	}
	return worst
}

// CountByCode tallies Results per Code.
func (l *TestLog) CountByCode() map[Code]int {
	counts := make(map[Code]int, 5)
	for _, r := range l.results {
		counts[r.Code]++
	}
	return counts
}
