// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package model

import "fmt"

// Test type discriminants for TestSpec's Test.type key.
const (
	TestTypeCLI = "CLI"
	TestTypeLV2 = "LV2"
)

// On/Off discriminants used by several boolean-ish keys.
const (
	On  = "On"
	Off = "Off"
)

// Well-known TestSpec keys, dotted per the spec file grammar.
const (
	KeyType         = "Test.type"
	KeyTopic        = "Test.topic"
	KeySubject      = "Test.subject"
	KeyArguments    = "Test.arguments"
	KeyAddArguments = "Test.addArguments"
	KeyCliTimeout   = "Test.cliTimeout"
	KeyVerifySound  = "Test.verifySound"
	KeyVerifyTimes  = "Test.verifyTimes"
	KeyScript       = "Test.Script"
	KeyFileBaseline = "fileBaseline"
	KeyFileResidual = "fileResidual"
	KeyFileProbe    = "fileProbe"
	KeyFileRuntime  = "fileRuntime"
	KeyFileExpense  = "fileExpense"
	KeyWorkDir      = "workDir"
)

// TestSpec is a mapping from dotted string keys to string values, produced
// by the spec file parser. It is deliberately a thin map: the core treats
// it as an opaque bag of strings and only interprets the keys it needs.
type TestSpec struct {
	Values map[string]string

	// Dir is the directory the spec file was loaded from; it anchors
	// relative paths found in the spec (workDir, file* keys) and is the
	// case's unique Topic when Test.topic is not given explicitly.
	Dir string
}

// Get returns the value for key, and whether it was present.
func (s TestSpec) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// GetOr returns the value for key, or fallback if absent.
func (s TestSpec) GetOr(key, fallback string) string {
	if v, ok := s.Values[key]; ok {
		return v
	}
	return fallback
}

// mandatoryKeys are required on every TestSpec regardless of Test.type.
var mandatoryKeys = []string{
	KeyType,
	KeyTopic,
	KeySubject,
	KeyArguments,
	KeyCliTimeout,
	KeyVerifySound,
	KeyVerifyTimes,
}

// Validate checks that all mandatory keys are present and hold a
// recognized value where the grammar constrains them. It does not check
// filesystem existence of paths; that is the launching step's job, since
// a missing subject is a run-time MALFUNCTION, not a parse error.
func (s TestSpec) Validate() error {
	for _, key := range mandatoryKeys {
		if _, ok := s.Values[key]; !ok {
			return fmt.Errorf("test spec %q: missing mandatory key %q", s.Dir, key)
		}
	}
	switch t := s.Values[KeyType]; t {
	case TestTypeCLI, TestTypeLV2:
	default:
		return fmt.Errorf("test spec %q: %s must be CLI or LV2, got %q", s.Dir, KeyType, t)
	}
	for _, key := range []string{KeyVerifySound, KeyVerifyTimes} {
		switch v := s.Values[key]; v {
		case On, Off:
		default:
			return fmt.Errorf("test spec %q: %s must be On or Off, got %q", s.Dir, key, v)
		}
	}
	return nil
}

// Topic returns the case's unique identifier.
func (s TestSpec) Topic() string {
	return s.Values[KeyTopic]
}

// Bool interprets an On/Off key, defaulting to false if absent or
// unrecognized.
func (s TestSpec) Bool(key string) bool {
	return s.Values[key] == On
}
