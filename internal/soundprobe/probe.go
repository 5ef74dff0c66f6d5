// Copyright 2026 The Yoshimi Acceptance Test Runner Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package soundprobe captures the raw PCM a subject process writes during a
// case, computes its RMS, diffs it against a stored baseline WAV, and
// judges the resulting residual against fixed decibel thresholds.
package soundprobe

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultSampleRate is used when Invocation does not report one.
const DefaultSampleRate = 48000

// residualWindow is the number of samples over which the residual's peak
// RMS is tracked, per the external contract.
const residualWindow = 512

// wavFormatIEEEFloat is the standard WAVE_FORMAT_IEEE_FLOAT tag (1 means
// integer PCM; 3 means float samples are stored verbatim as IEEE-754 bit
// patterns inside the int buffer go-audio/wav writes).
const wavFormatIEEEFloat = 3

// floatBitDepth is the bit depth of the float32 samples this package
// reads and writes; WAV has no native "float" width tag, so 32 exactly
// matches IEEE single precision.
const floatBitDepth = 32

// Residual is the sample-by-sample difference between a probe and its
// baseline, along with the peak RMS level observed across consecutive,
// non-overlapping residualWindow-sample blocks, expressed in dB relative
// to the probe's own average RMS.
type Residual struct {
	Data        []float32
	PeakRMSdBFS float64
}

// Probe holds the captured raw PCM of one case run plus its eagerly
// computed average RMS, and — once BuildDiff has run — the residual
// against a baseline.
type Probe struct {
	SampleRate int
	Channels   int
	Data       []float32
	AvgRMS     float64

	Residual *Residual
}

// New parses headerless, host-endian, mono 32-bit float PCM (the format
// the subject writes to its probe output) and computes its average RMS
// eagerly, so SoundJudgement can later scale a residual peak against it
// without re-reading the probe.
func New(sampleRate int, raw []byte) (*Probe, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("soundprobe: raw PCM length %d is not a multiple of 4 bytes", len(raw))
	}
	n := len(raw) / 4
	data := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.NativeEndian.Uint32(raw[i*4 : i*4+4])
		data[i] = math.Float32frombits(bits)
	}
	return &Probe{
		SampleRate: sampleRate,
		Channels:   1,
		Data:       data,
		AvgRMS:     rms(data),
	}, nil
}

func rms(data []float32) float64 {
	if len(data) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range data {
		sumSq += float64(s) * float64(s)
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

// ErrShapeMismatch is returned by BuildDiff when the baseline's channel
// count, sample rate, or length do not match the probe.
type ErrShapeMismatch struct {
	Reason string
}

func (e *ErrShapeMismatch) Error() string {
	return "soundprobe: baseline shape mismatch: " + e.Reason
}

// BuildDiff loads the baseline WAV at path, verifies its shape matches
// this probe, and computes the sample-by-sample residual plus its peak
// RMS level across fixed-size windows, in dB relative to p.AvgRMS.
func (p *Probe) BuildDiff(baselinePath string) error {
	f, err := os.Open(baselinePath)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("soundprobe: failed to open baseline %q: %w", baselinePath, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("soundprobe: failed to decode baseline %q: %w", baselinePath, err)
	}
	if buf.Format.NumChannels != p.Channels {
		return &ErrShapeMismatch{Reason: fmt.Sprintf("channels %d != %d", buf.Format.NumChannels, p.Channels)}
	}
	if buf.Format.SampleRate != p.SampleRate {
		return &ErrShapeMismatch{Reason: fmt.Sprintf("sample rate %d != %d", buf.Format.SampleRate, p.SampleRate)}
	}
	if len(buf.Data) != len(p.Data) {
		return &ErrShapeMismatch{Reason: fmt.Sprintf("length %d != %d", len(buf.Data), len(p.Data))}
	}

	residual := make([]float32, len(p.Data))
	for i, bits := range buf.Data {
		baselineSample := math.Float32frombits(uint32(int32(bits)))
		residual[i] = p.Data[i] - baselineSample
	}

	p.Residual = &Residual{
		Data:        residual,
		PeakRMSdBFS: peakWindowedRMSdBFS(residual, p.AvgRMS),
	}
	return nil
}

// peakWindowedRMSdBFS splits data into consecutive, non-overlapping
// residualWindow-sample blocks (one block of all of data when it is
// shorter than that) and returns the highest block RMS, expressed in dB
// relative to ref (the probe's average RMS). A trailing partial block is
// not measured. An all-silent residual yields -inf, which
// SoundJudgement treats as comfortably below DIFF_WARN_LEVEL.
func peakWindowedRMSdBFS(data []float32, ref float64) float64 {
	if len(data) == 0 || ref == 0 {
		return math.Inf(-1)
	}
	window := residualWindow
	if window > len(data) {
		window = len(data)
	}
	var peak float64
	for start := 0; start+window <= len(data); start += window {
		w := rms(data[start : start+window])
		if w > peak {
			peak = w
		}
	}
	if peak == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(peak/ref)
}

// DiscardStorage frees the probe's sample buffers, called by CleanUp
// between cases so memory does not accumulate across a long suite.
func (p *Probe) DiscardStorage() {
	p.Data = nil
	if p.Residual != nil {
		p.Residual.Data = nil
	}
}

// SaveProbe writes the probe's own samples as a canonical float, 1
// channel WAV, atomically (temp file + rename).
func (p *Probe) SaveProbe(path string) error {
	return saveWav(path, p.SampleRate, p.Channels, p.Data)
}

// SaveResidual writes the residual's samples as a canonical float, 1
// channel WAV, atomically. It is an error to call this before BuildDiff.
func (p *Probe) SaveResidual(path string) error {
	if p.Residual == nil {
		return fmt.Errorf("soundprobe: no residual computed yet for %q", path)
	}
	return saveWav(path, p.SampleRate, p.Channels, p.Residual.Data)
}

// saveWav writes its own temp-file-then-rename pair rather than going
// through atomicfile.Write: the wav.Encoder needs to seek back and patch
// its chunk size headers on Close, so it must own an *os.File, not a
// []byte buffer.
func saveWav(path string, sampleRate, channels int, data []float32) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".soundprobe-*.wav")
	if err != nil {
		return fmt.Errorf("soundprobe: failed to create temp file for %q: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := wav.NewEncoder(tmp, sampleRate, floatBitDepth, channels, wavFormatIEEEFloat)
	intData := make([]int, len(data))
	for i, s := range data {
		intData[i] = int(int32(math.Float32bits(s)))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           intData,
		SourceBitDepth: floatBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("soundprobe: failed to encode %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("soundprobe: failed to finalize %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("soundprobe: failed to close temp file for %q: %w", path, err)
	}
	return os.Rename(tmpPath, path)
}
