package wavtrim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func findChunk(chunks []testChunk, id string) *testChunk {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i]
		}
	}

	return nil
}

// newTestAsset builds an asset whose channel c holds gen(c, frame).
func newTestAsset(t *testing.T, sampleRate, numChans, frames int, gen func(c, f int) float32) *AudioAsset {
	t.Helper()

	buf := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, numChans)}
	for c := range numChans {
		buf.Channels[c] = make([]float32, frames)
		for f := range frames {
			buf.Channels[c][f] = gen(c, f)
		}
	}

	asset, err := NewAudioAsset(buf)
	if err != nil {
		t.Fatalf("NewAudioAsset failed: %v", err)
	}

	return asset
}

func constant(v float32) func(c, f int) float32 {
	return func(int, int) float32 { return v }
}

// ramp makes every sample encode its own frame index.
func ramp(frames int) func(c, f int) float32 {
	return func(_, f int) float32 { return float32(f) / float32(frames) }
}

func sine(sampleRate int, freq float64) func(c, f int) float32 {
	return func(_, f int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(sampleRate)))
	}
}

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
