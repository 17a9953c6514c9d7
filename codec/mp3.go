package codec

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/berlandbor/wavtrim"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo.
const (
	mp3Channels   = 2
	mp3FrameBytes = mp3Channels * 2
)

// MP3 decodes MPEG-1/2 layer III streams.
type MP3 struct{}

// Decode implements wavtrim.Decoder.
func (MP3) Decode(ctx context.Context, raw []byte) (*wavtrim.AudioAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 stream: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	frames := len(pcm) / mp3FrameBytes
	buf := &wavtrim.Buffer{
		SampleRate: dec.SampleRate(),
		Channels:   [][]float32{make([]float32, frames), make([]float32, frames)},
	}

	for f := range frames {
		for c := range mp3Channels {
			off := f*mp3FrameBytes + c*2
			buf.Channels[c][f] = pcm16ToFloat32(int16(binary.LittleEndian.Uint16(pcm[off:])))
		}
	}

	return wavtrim.NewAudioAsset(buf)
}
