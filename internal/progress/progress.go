// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package progress implements the per-case progress log: an append-only,
// line-oriented buffer the Watcher feeds with raw subject output, steps
// annotate with operator-visible notes, and later steps mine
// retrospectively by regular expression.
package progress

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// noteTag prefixes lines added via Note, so a retrospective Grep (or a
// human skimming a saved log) can tell a runner annotation apart from
// genuine subject output.
const noteTag = "## "

// Log is an append-only capture buffer, safe for concurrent use by the
// Watcher's reader goroutines and the main case-running goroutine.
type Log struct {
	mu    sync.Mutex
	lines []string
	start time.Time
}

// New returns an empty Log. start is used to render relative timestamps
// in Note lines; pass time.Time{} to omit them.
func New(start time.Time) *Log {
	return &Log{start: start}
}

// Append records one line of captured subject output. It satisfies the
// watcher.Sink interface.
func (l *Log) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

// Note appends an operator-visible annotation, distinct from captured
// subject output, optionally timestamped relative to the Log's start.
func (l *Log) Note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.start.IsZero() {
		l.lines = append(l.lines, noteTag+msg)
		return
	}
	l.lines = append(l.lines, noteTag+humanize.RelTime(l.start, time.Now(), "elapsed", "")+": "+msg)
}

// ClearLog truncates the buffer so memory does not grow across a long
// suite. Called by CleanUp between cases.
func (l *Log) ClearLog() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

// Grep returns every captured line, subject output or Note alike,
// matching pattern, in capture order.
func (l *Log) Grep(pattern *regexp.Regexp) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var matches []string
	for _, line := range l.lines {
		if pattern.MatchString(line) {
			matches = append(matches, line)
		}
	}
	return matches
}

// All returns a snapshot of every line captured so far.
func (l *Log) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
