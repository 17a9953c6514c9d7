package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/berlandbor/wavtrim/codec"
)

func TestRunGeneratesWavFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sine.wav")

	err := run([]string{"-output", outPath, "-length", "0.01", "-frequency", "220"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	if len(raw) <= 44 {
		t.Fatalf("unexpected small wav file size: %d", len(raw))
	}

	asset, err := codec.WAV{}.Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("generated file is not a valid wav: %v", err)
	}

	if asset.SampleRate() != 48000 {
		t.Fatalf("sample rate=%d, want 48000", asset.SampleRate())
	}

	if asset.NumChannels() != 1 {
		t.Fatalf("channels=%d, want 1", asset.NumChannels())
	}
}

func TestRunFlagParseError(t *testing.T) {
	err := run([]string{"-length", "not-a-number"})
	if err == nil {
		t.Fatalf("expected failure for invalid flag value")
	}
}

func TestRunDefaultParams(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "default.wav")

	err := run([]string{"-output", outPath, "-length", "0.005"})
	if err != nil {
		t.Fatalf("run with defaults failed: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}

	// 0.005 sec * 48000 Hz = 240 frames of 2 bytes
	if len(raw) != 44+480 {
		t.Fatalf("file size=%d, want %d", len(raw), 44+480)
	}
}

func TestRunStereo(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "stereo.wav")

	err := run([]string{"-output", outPath, "-length", "0.01", "-rate", "8000", "-channels", "2"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	asset, err := codec.WAV{}.Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if asset.NumChannels() != 2 || asset.NumFrames() != 80 {
		t.Fatalf("got %d channels, %d frames; want 2, 80", asset.NumChannels(), asset.NumFrames())
	}
}

func TestRunInvalidParams(t *testing.T) {
	tests := map[string][]string{
		"zero length":   {"-length", "0"},
		"zero channels": {"-channels", "0", "-length", "0.001"},
		"output path":   {"-output", "/nonexistent/dir/file.wav", "-length", "0.001"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if err := run(args); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
