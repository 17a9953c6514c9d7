package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/berlandbor/wavtrim"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

var errInvalidAIFF = errors.New("invalid AIFF file")

// AIFF decodes AIFF and AIFF-C files with uncompressed integer samples.
type AIFF struct{}

// Decode implements wavtrim.Decoder.
func (AIFF) Decode(ctx context.Context, raw []byte) (*wavtrim.AudioAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return nil, errInvalidAIFF
	}

	intBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read AIFF PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d", errUnhandledBitDepth, bitDepth)
	}

	return wavtrim.NewAudioAssetFromFloat32Buffer(&audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: int(dec.NumChans),
			SampleRate:  int(dec.SampleRate),
		},
		Data:           normalizeInts(intBuf.Data, bitDepth),
		SourceBitDepth: bitDepth,
	})
}

// normalizeInts maps signed integer samples of the given bit depth to
// [-1, 1].
func normalizeInts(data []int, bitDepth int) []float32 {
	scale := float64(int64(1) << (bitDepth - 1))

	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = clamp(float32(float64(v) / scale))
	}

	return out
}
