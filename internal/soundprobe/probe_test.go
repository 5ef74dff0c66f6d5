// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package soundprobe_test

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/Ichthyostega/yoshimi-test-sub000/internal/model"
	"github.com/Ichthyostega/yoshimi-test-sub000/internal/soundprobe"
)

func rawPCM(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.NativeEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(s))
	}
	return buf
}

func sineWave(n int, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*float64(i)/64))
	}
	return out
}

func TestNewComputesAvgRMS(t *testing.T) {
	samples := sineWave(4096, 1.0)
	p, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// RMS of a full-scale sine is ~0.707.
	if p.AvgRMS < 0.6 || p.AvgRMS > 0.8 {
		t.Errorf("AvgRMS = %v, want ~0.707", p.AvgRMS)
	}
}

func TestNewRejectsMisalignedLength(t *testing.T) {
	if _, err := soundprobe.New(48000, []byte{0, 1, 2}); err == nil {
		t.Error("New() = nil error, want error on non-multiple-of-4 length")
	}
}

func TestBuildDiffAgainstIdenticalBaselineIsSilent(t *testing.T) {
	samples := sineWave(4096, 0.5)
	p, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	baseline, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New(baseline) failed: %v", err)
	}
	baselinePath := filepath.Join(t.TempDir(), "baseline.wav")
	if err := baseline.SaveProbe(baselinePath); err != nil {
		t.Fatalf("SaveProbe failed: %v", err)
	}

	if err := p.BuildDiff(baselinePath); err != nil {
		t.Fatalf("BuildDiff failed: %v", err)
	}
	if p.Residual == nil {
		t.Fatal("Residual is nil after BuildDiff")
	}
	if !math.IsInf(p.Residual.PeakRMSdBFS, -1) {
		t.Errorf("PeakRMSdBFS = %v, want -Inf for an identical baseline", p.Residual.PeakRMSdBFS)
	}

	result := soundprobe.Judge(p, baselinePath)
	if result.Code != model.GREEN {
		t.Errorf("Judge() code = %v, want GREEN", result.Code)
	}
}

func TestBuildDiffRejectsShapeMismatch(t *testing.T) {
	p, err := soundprobe.New(48000, rawPCM(sineWave(2048, 0.5)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	baseline, err := soundprobe.New(44100, rawPCM(sineWave(2048, 0.5)))
	if err != nil {
		t.Fatalf("New(baseline) failed: %v", err)
	}
	baselinePath := filepath.Join(t.TempDir(), "baseline.wav")
	if err := baseline.SaveProbe(baselinePath); err != nil {
		t.Fatalf("SaveProbe failed: %v", err)
	}

	err = p.BuildDiff(baselinePath)
	if err == nil {
		t.Fatal("BuildDiff() = nil error, want a shape mismatch error")
	}
	if _, ok := err.(*soundprobe.ErrShapeMismatch); !ok {
		t.Errorf("BuildDiff() error = %T, want *ErrShapeMismatch", err)
	}
}

func TestJudgeReturnsViolationWhenBaselineMissing(t *testing.T) {
	p, err := soundprobe.New(48000, rawPCM(sineWave(2048, 0.5)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result := soundprobe.Judge(p, filepath.Join(t.TempDir(), "missing.wav"))
	if result.Code != model.VIOLATION {
		t.Errorf("Judge() code = %v, want VIOLATION", result.Code)
	}
}

func TestJudgeReturnsWarningForFaintProbe(t *testing.T) {
	samples := sineWave(4096, 0.0001) // well below -60 dBFS
	p, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	baseline, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New(baseline) failed: %v", err)
	}
	baselinePath := filepath.Join(t.TempDir(), "baseline.wav")
	if err := baseline.SaveProbe(baselinePath); err != nil {
		t.Fatalf("SaveProbe failed: %v", err)
	}
	if err := p.BuildDiff(baselinePath); err != nil {
		t.Fatalf("BuildDiff failed: %v", err)
	}

	result := soundprobe.Judge(p, baselinePath)
	if result.Code != model.WARNING || result.Summary != "faint probe" {
		t.Errorf("Judge() = %+v, want WARNING \"faint probe\"", result)
	}
}

func TestSaveProbeAndReloadRoundTrips(t *testing.T) {
	samples := sineWave(1024, 0.25)
	p, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "probe.wav")
	if err := p.SaveProbe(path); err != nil {
		t.Fatalf("SaveProbe failed: %v", err)
	}

	reread, err := soundprobe.New(48000, rawPCM(samples))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := reread.BuildDiff(path); err != nil {
		t.Fatalf("BuildDiff against saved probe failed: %v", err)
	}
	if !math.IsInf(reread.Residual.PeakRMSdBFS, -1) {
		t.Errorf("PeakRMSdBFS = %v, want -Inf for a round-tripped save", reread.Residual.PeakRMSdBFS)
	}
}

func TestDiscardStorageFreesBuffers(t *testing.T) {
	p, err := soundprobe.New(48000, rawPCM(sineWave(256, 0.5)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.DiscardStorage()
	if p.Data != nil {
		t.Error("Data still populated after DiscardStorage")
	}
}
