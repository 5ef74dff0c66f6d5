// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package spawn forks a child process with its own process group and three
// anonymous pipes wired to its stdin, stdout and stderr. It is the lowest
// layer of the subprocess scaffolding; Watcher builds on top of it.
package spawn

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Handle is the set of pipe endpoints and process metadata returned by a
// successful Launch.
type Handle struct {
	Pid    int
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	cmd *exec.Cmd
}

// SpawnError names the syscall step that failed.
type SpawnError struct {
	Step string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn: %s: %v", e.Step, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Launch starts subject with argv, inheriting the parent's environment
// plus any extra entries in env, and working directory wd (empty means
// the parent's current directory). The child is placed in its own process
// group so that Handle.Kill can terminate it and anything it has itself
// forked.
func Launch(subject string, argv []string, wd string, env []string) (*Handle, error) {
	cmd := exec.Command(subject, argv...)
	cmd.Dir = wd
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Step: "open stdin pipe", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Step: "open stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Step: "open stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Step: "start subject", Err: err}
	}

	return &Handle{
		Pid:    cmd.Process.Pid,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		cmd:    cmd,
	}, nil
}

// Wait blocks until the child has exited and returns its exit code.
func (h *Handle) Wait() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

// Kill best-effort terminates the whole process group. It is safe to call
// more than once and after the child has already exited.
func (h *Handle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-h.Pid, unix.SIGKILL)
	if err != nil && err != unix.ESRCH {
		return fmt.Errorf("failed to kill process group %d: %w", h.Pid, err)
	}
	return nil
}
