package codec

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/berlandbor/wavtrim"
	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatALaw       = 6
	wavFormatMuLaw      = 7
	wavFormatExtensible = 0xFFFE

	floatPCM8Center = 127.5
	scalePCMInt16   = 32768.0
	scalePCMInt16P  = 32767.0
	scalePCMInt24   = 8388608.0
	scalePCMInt32   = 2147483648.0
)

var (
	// ErrPCMChunkNotFound indicates a WAV file without a data chunk.
	ErrPCMChunkNotFound = errors.New("PCM chunk not found in audio file")
	// ErrFmtChunkNotFound indicates a data chunk that precedes any fmt chunk.
	ErrFmtChunkNotFound = errors.New("fmt chunk not found before PCM data")

	errUnhandledBitDepth = errors.New("unhandled bit depth")
	errUnsupportedFormat = errors.New("unsupported wav format")
	errNoChannels        = errors.New("fmt chunk declares no channels")
)

// wavFmt holds the fields of the fmt chunk needed to decode samples.
type wavFmt struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
}

// WAV decodes RIFF/WAVE files holding PCM integer (8/16/24/32-bit), IEEE
// float (32/64-bit), A-law or mu-law samples.
type WAV struct{}

// Decode implements wavtrim.Decoder.
func (WAV) Decode(ctx context.Context, raw []byte) (*wavtrim.AudioAsset, error) {
	buf, err := decodeWAV(ctx, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	return wavtrim.NewAudioAssetFromFloat32Buffer(buf)
}

func decodeWAV(ctx context.Context, r io.Reader) (*audio.Float32Buffer, error) {
	parser := riff.New(r)

	id, _, err := parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk ID and size: %w", err)
	}

	if id != riff.RiffID {
		return nil, fmt.Errorf("%s - %w", id, riff.ErrFmtNotSupported)
	}

	err = binary.Read(r, binary.BigEndian, &parser.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to read format: %w", err)
	}

	if parser.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%s - %w", parser.Format, riff.ErrFmtNotSupported)
	}

	var format *wavFmt

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, padded, err := nextChunk(parser, r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrPCMChunkNotFound
			}

			return nil, fmt.Errorf("error reading chunk header - %w", err)
		}

		switch chunk.ID {
		case riff.FmtID:
			format, err = decodeFmtChunk(chunk)
			if err != nil {
				return nil, err
			}
		case riff.DataFormatID:
			if format == nil {
				return nil, ErrFmtChunkNotFound
			}

			data, err := io.ReadAll(chunk.R)
			if err != nil {
				return nil, fmt.Errorf("failed to read PCM data: %w", err)
			}

			samples, err := decodeSamples(data, format)
			if err != nil {
				return nil, err
			}

			return &audio.Float32Buffer{
				Format: &audio.Format{
					NumChannels: int(format.NumChannels),
					SampleRate:  int(format.SampleRate),
				},
				Data:           samples,
				SourceBitDepth: int(format.BitsPerSample),
			}, nil
		default:
			chunk.Drain()
		}

		if padded {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to skip chunk padding: %w", err)
			}
		}
	}
}

// nextChunk reads a chunk header and limits the chunk reader to the declared
// size. padded reports the alignment byte that follows odd sized chunks.
func nextChunk(parser *riff.Parser, r io.Reader) (*riff.Chunk, bool, error) {
	id, size, err := parser.IDnSize()
	if err != nil {
		return nil, false, err
	}

	chunk := &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(r, int64(size)),
	}

	return chunk, size%2 == 1, nil
}

func decodeFmtChunk(chunk *riff.Chunk) (*wavFmt, error) {
	f := &wavFmt{}

	fields := []struct {
		name string
		dst  any
	}{
		{"wav format", &f.FormatTag},
		{"channels", &f.NumChannels},
		{"sample rate", &f.SampleRate},
		{"avg bytes/sec", &f.AvgBytesPerSec},
		{"block align", &f.BlockAlign},
		{"bit depth", &f.BitsPerSample},
	}

	for _, field := range fields {
		if err := chunk.ReadLE(field.dst); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", field.name, err)
		}
	}

	// WAVE_FORMAT_EXTENSIBLE carries the real format tag in the first two
	// bytes of the sub format GUID, 8 bytes into the extension.
	if f.FormatTag == wavFormatExtensible && chunk.Size >= 16+2+22 {
		var ext struct {
			Size          uint16
			ValidBits     uint16
			ChannelMask   uint32
			SubFormatCode uint16
		}

		if err := chunk.ReadLE(&ext); err != nil {
			return nil, fmt.Errorf("failed to read fmt extension: %w", err)
		}

		f.FormatTag = ext.SubFormatCode
	}

	chunk.Drain()

	if f.NumChannels == 0 {
		return nil, errNoChannels
	}

	return f, nil
}

// decodeSamples converts interleaved little-endian sample bytes to floats in
// [-1, 1]. A trailing partial frame is dropped.
func decodeSamples(data []byte, f *wavFmt) ([]float32, error) {
	decode, width, err := sampleDecodeFunc(f)
	if err != nil {
		return nil, err
	}

	frameBytes := width * int(f.NumChannels)
	count := len(data) / frameBytes * int(f.NumChannels)

	out := make([]float32, count)
	for i := range out {
		out[i] = decode(data[i*width : (i+1)*width])
	}

	return out, nil
}

// sampleDecodeFunc returns the per-sample decoder for the format and the
// number of bytes each sample occupies.
func sampleDecodeFunc(f *wavFmt) (func([]byte) float32, int, error) {
	bitDepth := int(f.BitsPerSample)

	switch f.FormatTag {
	case wavFormatIEEEFloat:
		switch bitDepth {
		case 32:
			return func(b []byte) float32 {
				return clamp(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			}, 4, nil
		case 64:
			return func(b []byte) float32 {
				return clamp(float32(math.Float64frombits(binary.LittleEndian.Uint64(b))))
			}, 8, nil
		}
	case wavFormatALaw, wavFormatMuLaw:
		if bitDepth != 8 {
			break
		}

		table := &aLawTable
		if f.FormatTag == wavFormatMuLaw {
			table = &muLawTable
		}

		return func(b []byte) float32 {
			return float32(float64(table[b[0]]) / scalePCMInt16)
		}, 1, nil
	case wavFormatPCM:
		switch {
		case bitDepth == 8:
			// 8bit values are unsigned
			return func(b []byte) float32 {
				return float32((float64(b[0]) - floatPCM8Center) / floatPCM8Center)
			}, 1, nil
		case bitDepth > 8 && bitDepth <= 16:
			return func(b []byte) float32 {
				return pcm16ToFloat32(int16(binary.LittleEndian.Uint16(b)))
			}, 2, nil
		case bitDepth > 16 && bitDepth <= 24:
			return func(b []byte) float32 {
				return float32(float64(audio.Int24LETo32(b)) / scalePCMInt24)
			}, 3, nil
		case bitDepth > 24 && bitDepth <= 32:
			return func(b []byte) float32 {
				return float32(float64(int32(binary.LittleEndian.Uint32(b))) / scalePCMInt32)
			}, 4, nil
		}
	default:
		return nil, 0, fmt.Errorf("%w: %d", errUnsupportedFormat, f.FormatTag)
	}

	return nil, 0, fmt.Errorf("%w: %d (format %d)", errUnhandledBitDepth, bitDepth, f.FormatTag)
}

// pcm16ToFloat32 mirrors the asymmetric scaling used by wavtrim's encoder so
// that exported files decode back to within one quantization step.
func pcm16ToFloat32(sample int16) float32 {
	if sample < 0 {
		return float32(float64(sample) / scalePCMInt16)
	}

	return float32(float64(sample) / scalePCMInt16P)
}

func clamp(value float32) float32 {
	if value < -1 {
		return -1
	}

	if value > 1 {
		return 1
	}

	return value
}
