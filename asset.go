package wavtrim

import (
	"fmt"

	"github.com/go-audio/audio"
)

// Buffer is planar float PCM: one slice of samples per channel, all of the
// same length, nominally in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// RenderedBuffer is the processed export range produced by a ClipRenderer. It
// is owned by the caller and never shares storage with an AudioAsset.
type RenderedBuffer = Buffer

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}

	return len(b.Channels)
}

// NumFrames returns the number of frames, the length of the first channel.
func (b *Buffer) NumFrames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// Validate checks the shape of the buffer.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}

	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}

	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	frames := len(b.Channels[0])
	if frames == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidBuffer)
	}

	for i, ch := range b.Channels {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidBuffer, i, len(ch), frames)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}

	out := &Buffer{
		SampleRate: b.SampleRate,
		Channels:   make([][]float32, len(b.Channels)),
	}
	for i, ch := range b.Channels {
		out.Channels[i] = append([]float32(nil), ch...)
	}

	return out
}

// AsFloat32Buffer interleaves the channels into a go-audio buffer.
func (b *Buffer) AsFloat32Buffer() *audio.Float32Buffer {
	numChans := b.NumChannels()
	frames := b.NumFrames()

	data := make([]float32, frames*numChans)
	for f := range frames {
		for c := range numChans {
			data[f*numChans+c] = b.Channels[c][f]
		}
	}

	return &audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: numChans,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 32,
	}
}

// BufferFromFloat32 de-interleaves a go-audio buffer. Trailing samples that
// do not fill a whole frame are dropped.
func BufferFromFloat32(buf *audio.Float32Buffer) (*Buffer, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidBuffer)
	}

	numChans := buf.Format.NumChannels
	if numChans <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	frames := len(buf.Data) / numChans
	out := &Buffer{
		SampleRate: buf.Format.SampleRate,
		Channels:   make([][]float32, numChans),
	}

	for c := range numChans {
		ch := make([]float32, frames)
		for f := range frames {
			ch[f] = buf.Data[f*numChans+c]
		}

		out.Channels[c] = ch
	}

	return out, nil
}

// AudioAsset is an immutable decoded clip. It keeps its own copy of the
// samples; every accessor hands out copies.
type AudioAsset struct {
	buf Buffer
}

// NewAudioAsset validates buf and copies it into a new asset.
func NewAudioAsset(buf *Buffer) (*AudioAsset, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	return &AudioAsset{buf: *buf.Clone()}, nil
}

// NewAudioAssetFromFloat32Buffer builds an asset from interleaved samples.
func NewAudioAssetFromFloat32Buffer(buf *audio.Float32Buffer) (*AudioAsset, error) {
	planar, err := BufferFromFloat32(buf)
	if err != nil {
		return nil, err
	}

	if err := planar.Validate(); err != nil {
		return nil, err
	}

	return &AudioAsset{buf: *planar}, nil
}

// SampleRate returns the sample rate in Hz.
func (a *AudioAsset) SampleRate() int {
	if a == nil {
		return 0
	}

	return a.buf.SampleRate
}

// NumChannels returns the channel count.
func (a *AudioAsset) NumChannels() int {
	if a == nil {
		return 0
	}

	return a.buf.NumChannels()
}

// NumFrames returns the number of frames in every channel.
func (a *AudioAsset) NumFrames() int {
	if a == nil {
		return 0
	}

	return a.buf.NumFrames()
}

// Duration returns the clip length in seconds.
func (a *AudioAsset) Duration() float64 {
	if a == nil {
		return 0
	}

	return a.buf.Duration()
}

// Channel returns a copy of one channel, or nil when ch is out of range.
func (a *AudioAsset) Channel(ch int) []float32 {
	return a.Frames(ch, 0, a.NumFrames())
}

// Frames returns a copy of channel ch over [start, end), clamped to the clip.
func (a *AudioAsset) Frames(ch, start, end int) []float32 {
	if a == nil || ch < 0 || ch >= len(a.buf.Channels) {
		return nil
	}

	src := a.buf.Channels[ch]
	start = clampInt(start, 0, len(src))
	end = clampInt(end, start, len(src))

	return append([]float32(nil), src[start:end]...)
}

// Sample returns one sample, or 0 outside the clip.
func (a *AudioAsset) Sample(ch, frame int) float32 {
	if a == nil || ch < 0 || ch >= len(a.buf.Channels) {
		return 0
	}

	src := a.buf.Channels[ch]
	if frame < 0 || frame >= len(src) {
		return 0
	}

	return src[frame]
}

// Buffer returns a deep copy of the decoded samples.
func (a *AudioAsset) Buffer() *Buffer {
	if a == nil {
		return nil
	}

	return a.buf.Clone()
}

// channels gives renderers in this package read-only access without copying.
func (a *AudioAsset) channels() [][]float32 {
	return a.buf.Channels
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}

	if value > high {
		return high
	}

	return value
}
