// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package specfile

import (
	"fmt"
	"os"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
)

// Merge layers b over a: every key b sets overrides the same key in a. a
// and b are both left untouched; the result is a new map.
func Merge(a, b map[string]string) map[string]string {
	merged := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

// LoadLayered parses each of paths in order and merges them left-biased:
// later paths override earlier ones. A path that does not exist is
// silently skipped, since defaults.ini/setup.ini are both optional.
func LoadLayered(paths ...string) (map[string]string, error) {
	values := make(map[string]string)
	for _, path := range paths {
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", path, err)
		}
		layer, parseErr := Parse(f)
		f.Close()
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", path, parseErr)
		}
		values = Merge(values, layer)
	}
	return values, nil
}

// LoadTestSpec parses the single .test file at path and layers it over
// defaults/overrides already loaded, producing a validated TestSpec whose
// Dir is dir (normally the parent directory of path, and the case's
// Topic when Test.topic is absent).
func LoadTestSpec(path, dir string, layered map[string]string) (model.TestSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TestSpec{}, fmt.Errorf("failed to open test spec %q: %w", path, err)
	}
	defer f.Close()

	own, err := Parse(f)
	if err != nil {
		return model.TestSpec{}, fmt.Errorf("failed to parse test spec %q: %w", path, err)
	}

	spec := model.TestSpec{Dir: dir, Values: Merge(layered, own)}
	if _, ok := spec.Values[model.KeyTopic]; !ok {
		spec.Values[model.KeyTopic] = dir
	}
	if err := spec.Validate(); err != nil {
		return model.TestSpec{}, err
	}
	return spec, nil
}
