package wavtrim

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
)

const (
	// HeaderSize is the size of the canonical RIFF/WAVE header.
	HeaderSize = 44
	// SuggestedFilename is the file name offered to the host's save mechanism.
	SuggestedFilename = "processed_audio.wav"

	wavFormatPCM     = 1
	fmtChunkSize     = 16
	bitsPerSample    = 16
	bytesPerSample   = bitsPerSample / 8
	riffHeaderFields = 36
	framesPerFlush   = 4096
	maxChunkBytes    = 1<<32 - 1
)

var (
	errNilWriter       = errors.New("can't write to a nil writer")
	errAlreadyWroteHdr = errors.New("already wrote header")
	errDataTooLarge    = errors.New("PCM data does not fit a 32-bit RIFF chunk")
)

// DataSize returns the size of the data chunk payload: frames * channels * 2.
func DataSize(frames, numChans int) int {
	return frames * numChans * bytesPerSample
}

// Encoder writes a float buffer as a 16-bit PCM WAV container with the
// canonical 44-byte header.
type Encoder struct {
	w   io.Writer
	buf *bytes.Buffer

	WrittenBytes int
	wroteHeader  bool
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: bytes.NewBuffer(make([]byte, 0, framesPerFlush*2*bytesPerSample)),
	}
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// Encode validates b and writes the whole WAV file. Invalid buffers are
// rejected before anything is written.
func (e *Encoder) Encode(b *Buffer) error {
	if e == nil || e.w == nil {
		return errNilWriter
	}

	if err := b.Validate(); err != nil {
		return err
	}

	dataBytes := DataSize(b.NumFrames(), b.NumChannels())
	if uint64(dataBytes)+riffHeaderFields > maxChunkBytes {
		return fmt.Errorf("%w: %d bytes", errDataTooLarge, dataBytes)
	}

	if err := e.writeHeader(b.SampleRate, b.NumChannels(), dataBytes); err != nil {
		return err
	}

	return e.writeFrames(b)
}

func (e *Encoder) writeHeader(sampleRate, numChans, dataBytes int) error {
	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	e.wroteHeader = true

	blockAlign := numChans * bytesPerSample

	fields := []struct {
		name  string
		value any
	}{
		{"riff ID", riff.RiffID},
		{"riff size", uint32(riffHeaderFields + dataBytes)},
		{"wave ID", riff.WavFormatID},
		{"fmt ID", riff.FmtID},
		{"fmt size", uint32(fmtChunkSize)},
		{"audio format", uint16(wavFormatPCM)},
		{"number of channels", uint16(numChans)},
		{"sample rate", uint32(sampleRate)},
		{"byte rate", uint32(sampleRate * blockAlign)},
		{"block align", uint16(blockAlign)},
		{"bits per sample", uint16(bitsPerSample)},
		{"data ID", riff.DataFormatID},
		{"data size", uint32(dataBytes)},
	}

	for _, f := range fields {
		if err := e.AddLE(f.value); err != nil {
			return fmt.Errorf("error encoding the %s - %w", f.name, err)
		}
	}

	return nil
}

// writeFrames interleaves the channels frame by frame, flushing every
// framesPerFlush frames to keep the number of writes low.
func (e *Encoder) writeFrames(b *Buffer) error {
	var sample [bytesPerSample]byte

	frames := b.NumFrames()
	for f := range frames {
		for _, ch := range b.Channels {
			binary.LittleEndian.PutUint16(sample[:], uint16(float32ToPCM16(ch[f])))
			e.buf.Write(sample[:])
		}

		if (f+1)%framesPerFlush == 0 || f == frames-1 {
			if err := e.flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Encoder) flush() error {
	n, err := e.w.Write(e.buf.Bytes())
	e.WrittenBytes += n
	e.buf.Reset()

	if err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}

	return nil
}

// EncodeWAV returns b as WAV file bytes.
func EncodeWAV(b *Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	out := bytes.NewBuffer(make([]byte, 0, HeaderSize+DataSize(b.NumFrames(), b.NumChannels())))
	if err := NewEncoder(out).Encode(b); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// WriteWAVFile encodes b into the file at path, creating or truncating it.
func WriteWAVFile(path string, b *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := NewEncoder(f).Encode(b); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	return f.Close()
}
