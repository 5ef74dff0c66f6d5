// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package spawn_test

import (
	"bufio"
	"io"
	"testing"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/spawn"
)

func TestLaunchRunsAndCapturesOutput(t *testing.T) {
	h, err := spawn.Launch("/bin/echo", []string{"hello, subject"}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	line, err := bufio.NewReader(h.Stdout).ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("failed to read stdout: %v", err)
	}
	if got, want := line, "hello, subject\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	code, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestKillTerminatesTheChild(t *testing.T) {
	h, err := spawn.Launch("/bin/sleep", []string{"30"}, "", nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	if err := h.Kill(); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}

	code, err := h.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if code == 0 {
		t.Errorf("exit code = 0, want nonzero after Kill")
	}

	// Kill must be idempotent: calling it again after reaping is a no-op.
	if err := h.Kill(); err != nil {
		t.Errorf("second Kill() = %v, want nil", err)
	}
}

func TestLaunchFailsOnMissingSubject(t *testing.T) {
	if _, err := spawn.Launch("/no/such/executable", nil, "", nil); err == nil {
		t.Error("Launch() = nil error, want SpawnError for missing executable")
	}
}
