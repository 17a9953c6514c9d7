package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/berlandbor/wavtrim"
	"github.com/h2non/filetype"
)

// Format names a supported input container.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatAIFF Format = "aiff"
	FormatMP3  Format = "mp3"
)

// ErrUnsupportedFormat is returned for input that is not WAV, AIFF or MP3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// sniffLen is how much of the input filetype needs to see.
const sniffLen = 262

// Detect identifies the container of raw from its leading bytes.
func Detect(raw []byte) (Format, error) {
	head := raw[:min(len(raw), sniffLen)]

	kind, err := filetype.Match(head)
	if err == nil {
		switch kind.Extension {
		case "wav":
			return FormatWAV, nil
		case "aiff", "aif":
			return FormatAIFF, nil
		case "mp3":
			return FormatMP3, nil
		}
	}

	// filetype only knows plain AIFF; AIFF-C and headerless MP3 frames are
	// recognised here.
	switch {
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("FORM")) &&
		(bytes.Equal(head[8:12], []byte("AIFF")) || bytes.Equal(head[8:12], []byte("AIFC"))):
		return FormatAIFF, nil
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}

	if kind.MIME.Value != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	return "", ErrUnsupportedFormat
}

// DecoderFor returns the decoder for format.
func DecoderFor(format Format) (wavtrim.Decoder, error) {
	switch format {
	case FormatWAV:
		return WAV{}, nil
	case FormatAIFF:
		return AIFF{}, nil
	case FormatMP3:
		return MP3{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Auto detects the container and decodes with the matching decoder.
type Auto struct{}

// Decode implements wavtrim.Decoder.
func (Auto) Decode(ctx context.Context, raw []byte) (*wavtrim.AudioAsset, error) {
	format, err := Detect(raw)
	if err != nil {
		return nil, err
	}

	dec, err := DecoderFor(format)
	if err != nil {
		return nil, err
	}

	asset, err := dec.Decode(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	return asset, nil
}
