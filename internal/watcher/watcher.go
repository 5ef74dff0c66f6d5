// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package watcher owns a spawned child process: a reader goroutine drains
// its stdout line by line into a progress log and a MatchTask, a second
// goroutine drains stderr, and a third reaps the exit code. The main
// goroutine only ever blocks on MatchTask.Activate or RetrieveExitCode.
package watcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/spawn"
)

// Sink receives every line produced by the child, tagged by stream.
type Sink interface {
	Append(line string)
}

// stderrTag prefixes every stderr line handed to the Sink; stdout lines
// are passed through untagged.
const stderrTag = "stderr: "

// exitFuture is resolved exactly once by the reaper goroutine; readers
// block on done and then read code/err, which is safe because a channel
// close happens-before any receive that observes it.
type exitFuture struct {
	done chan struct{}
	code int
	err  error
}

func newExitFuture() *exitFuture {
	return &exitFuture{done: make(chan struct{})}
}

func (f *exitFuture) resolve(code int, err error) {
	f.code, f.err = code, err
	close(f.done)
}

// Watcher owns a spawned child and the goroutines that drain its output.
type Watcher struct {
	handle *spawn.Handle
	group  *errgroup.Group

	match *MatchTask
	sink  Sink
	exit  *exitFuture
}

// New starts watching the already-spawned child in handle. The returned Watcher owns
// handle's pipes for its entire lifetime; call Close to join the reader
// goroutines and release them.
func New(handle *spawn.Handle, sink Sink) *Watcher {
	w := &Watcher{
		handle: handle,
		match:  NewMatchTask(),
		sink:   sink,
		exit:   newExitFuture(),
	}

	group, _ := errgroup.WithContext(context.Background())
	w.group = group

	// exec.Cmd's Stdout/StderrPipe docs: Wait closes the pipes once the
	// command exits, so it is incorrect to call Wait before all reads
	// from the pipes have completed. The reaper below blocks on
	// readersDone before reaping, so it never races readLines' last Read.
	var readersDone sync.WaitGroup
	readersDone.Add(2)

	group.Go(func() error {
		defer readersDone.Done()
		return w.readLines(handle.Stdout, true)
	})
	group.Go(func() error {
		defer readersDone.Done()
		return w.readLines(handle.Stderr, false)
	})
	group.Go(func() error {
		readersDone.Wait()
		code, err := handle.Wait()
		w.exit.resolve(code, err)
		w.match.Deactivate()
		return nil
	})

	return w
}

// readLines drains r line by line (LF-terminated; a trailing partial line
// on EOF is flushed as a final line), appending every line to the sink
// (stderr lines prefixed with stderrTag) and, for stdout, handing it to
// the MatchTask.
func (w *Watcher) readLines(r io.Reader, matchable bool) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = trimTrailingNewline(line)
			if !matchable {
				line = stderrTag + line
			}
			w.sink.Append(line)
			if matchable {
				w.match.Evaluate(line)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func trimTrailingNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
	}
	if n > 0 && s[n-1] == '\r' {
		n--
	}
	return s[:n]
}

// Matcher returns the Watcher's MatchTask so a step can install a new
// condition.
func (w *Watcher) Matcher() *MatchTask {
	return w.match
}

// FailedLaunch is an alias of ErrFailedLaunch.
var FailedLaunch = ErrFailedLaunch

// Send writes a line plus a trailing newline to the child's stdin.
// Returns FailedLaunch if the subject has already exited.
func (w *Watcher) Send(line string) error {
	select {
	case <-w.exit.done:
		return fmt.Errorf("%w: cannot send after subject exited", ErrFailedLaunch)
	default:
	}
	_, err := w.handle.Stdin.Write([]byte(line + "\n"))
	return err
}

// RetrieveExitCode blocks until the child has exited or the timeout
// elapses, whichever comes first. On timeout the child is killed.
func (w *Watcher) RetrieveExitCode(timeout time.Duration) (int, error) {
	select {
	case <-w.exit.done:
		return w.exit.code, w.exit.err
	case <-time.After(timeout):
		w.handle.Kill()
		return -1, fmt.Errorf("timeout after %s waiting for subject to exit", timeout)
	}
}

// Kill best-effort terminates the child. Idempotent.
func (w *Watcher) Kill() error {
	return w.handle.Kill()
}

// Close joins the reader goroutines. If the child is still alive it is
// killed and reaped first.
func (w *Watcher) Close() error {
	w.handle.Kill()
	return w.group.Wait()
}
