// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package watcher

import (
	"errors"
	"regexp"
	"sync/atomic"
)

// ErrFailedLaunch is returned when the subject dies, or a pipe hits EOF,
// while a MatchTask is still expecting a line.
var ErrFailedLaunch = errors.New("subject died while still expecting some output")

// LinePredicate decides whether a captured line satisfies some condition.
type LinePredicate func(line string) bool

// Regexp returns a LinePredicate that matches a line against re.
func Regexp(re *regexp.Regexp) LinePredicate {
	return func(line string) bool { return re.MatchString(line) }
}

// MatchTask is a single-slot rendezvous between the reader goroutine
// (producer of lines) and the main goroutine (consumer waiting for a
// condition). At most one condition may be active at a time; installing a
// new one while another is active is a programming error.
type MatchTask struct {
	active       atomic.Bool
	precondition LinePredicate
	preconditionMet bool
	primary      LinePredicate
	done         chan error
}

// NewMatchTask returns an idle MatchTask, ready to have a condition
// installed via On.
func NewMatchTask() *MatchTask {
	return &MatchTask{}
}

// Condition is a builder for a single activation of a MatchTask.
type Condition struct {
	task         *MatchTask
	precondition LinePredicate
	primary      LinePredicate
}

// On starts building a condition keyed on the primary predicate: the line
// that actually satisfies the wait.
func (m *MatchTask) On(primary LinePredicate) *Condition {
	return &Condition{task: m, primary: primary}
}

// WithPrecondition adds a predicate that must be satisfied by some earlier
// line before the primary predicate is even evaluated. Once satisfied it
// latches; it is not re-evaluated.
func (c *Condition) WithPrecondition(pre LinePredicate) *Condition {
	c.precondition = pre
	return c
}

// Activate arms the MatchTask and returns a channel that receives exactly
// one error: nil on match, or ErrFailedLaunch on EOF/kill. A timeout is
// the caller's own select case; nothing is sent on the channel for it.
// Activate panics if a condition is
// already active: installing two conditions concurrently is an invariant
// violation, not a runtime error to recover from.
func (c *Condition) Activate() <-chan error {
	if c.task.active.Load() {
		panic("watcher: MatchTask activated while a condition is already active")
	}
	// Every write below must land before the release-store of active below,
	// so the reader goroutine sees a fully-formed condition the first time
	// it observes active == true.
	c.task.precondition = c.precondition
	c.task.preconditionMet = c.precondition == nil
	c.task.primary = c.primary
	c.task.done = make(chan error, 1)
	c.task.active.Store(true)
	return c.task.done
}

// Evaluate is called by the reader goroutine for every captured line. It
// is a no-op when the task is inactive.
func (m *MatchTask) Evaluate(line string) {
	if !m.active.Load() {
		return
	}
	if !m.preconditionMet {
		if m.precondition(line) {
			m.preconditionMet = true
		}
		return
	}
	if m.primary(line) {
		m.active.Store(false)
		m.done <- nil
	}
}

// Deactivate is called by the reader goroutine on EOF, kill, or timeout.
// If a condition was active, it fails the waiting caller with
// ErrFailedLaunch; otherwise it is a no-op.
func (m *MatchTask) Deactivate() {
	if m.active.CompareAndSwap(true, false) {
		m.done <- ErrFailedLaunch
	}
}
