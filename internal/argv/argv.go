// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package argv turns the free-form Test.arguments / Test.addArguments
// strings found in a test spec into an argument vector suitable for
// spawn.Launch, honoring shell-style quoting.
package argv

import (
	"fmt"

	"github.com/google/shlex"
)

// Split tokenizes s the way a shell would when building an argv, without
// performing any globbing, variable expansion, or redirection: those have
// no meaning for a spec's Test.arguments string.
func Split(s string) ([]string, error) {
	fields, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize arguments %q: %w", s, err)
	}
	return fields, nil
}

// Concat splits base and extra and concatenates the resulting vectors,
// base first. Either may be empty.
func Concat(base, extra string) ([]string, error) {
	baseArgs, err := Split(base)
	if err != nil {
		return nil, err
	}
	if extra == "" {
		return baseArgs, nil
	}
	extraArgs, err := Split(extra)
	if err != nil {
		return nil, err
	}
	return append(baseArgs, extraArgs...), nil
}
