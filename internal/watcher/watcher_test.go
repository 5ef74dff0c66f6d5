// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package watcher_test

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/spawn"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/watcher"
)

type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memSink) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *memSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

var bannerRe = regexp.MustCompile(`Yay! We're up and running :\)`)

func TestMatchOnBannerLine(t *testing.T) {
	h, err := spawn.Launch("/bin/sh", []string{"-c", `echo "Yay! We're up and running :)"`}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	sink := &memSink{}
	w := watcher.New(h, sink)
	defer w.Close()

	done := w.Matcher().On(watcher.Regexp(bannerRe)).Activate()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("match failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for banner match")
	}
}

func TestDeactivatesOnUnexpectedEOF(t *testing.T) {
	h, err := spawn.Launch("/bin/sh", []string{"-c", `echo starting; exit 1`}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	sink := &memSink{}
	w := watcher.New(h, sink)
	defer w.Close()

	done := w.Matcher().On(watcher.Regexp(bannerRe)).Activate()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected FailedLaunch, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deactivation")
	}
}

func TestRetrieveExitCodeTimesOutAndKills(t *testing.T) {
	h, err := spawn.Launch("/bin/sleep", []string{"30"}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	sink := &memSink{}
	w := watcher.New(h, sink)
	defer w.Close()

	_, err = w.RetrieveExitCode(50 * time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}

func TestRetrieveExitCodeResolvesOnExit(t *testing.T) {
	h, err := spawn.Launch("/bin/sh", []string{"-c", "exit 7"}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	sink := &memSink{}
	w := watcher.New(h, sink)
	defer w.Close()

	code, err := w.RetrieveExitCode(2 * time.Second)
	if err != nil {
		t.Fatalf("RetrieveExitCode failed: %v", err)
	}
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}
