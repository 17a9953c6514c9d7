package wavtrim

import "errors"

var (
	// ErrDecode indicates the raw input bytes could not be decoded into an asset.
	ErrDecode = errors.New("audio decode failed")
	// ErrInvalidRange indicates a degenerate or out of bounds trim range.
	ErrInvalidRange = errors.New("invalid trim range")
	// ErrNoAssetLoaded is returned by operations that need a decoded clip.
	ErrNoAssetLoaded = errors.New("no audio asset loaded")
	// ErrRenderEngine wraps failures reported by a RenderEngine.
	ErrRenderEngine = errors.New("render engine failed")
	// ErrSink wraps failures reported by an OutputSink.
	ErrSink = errors.New("output sink failed")
	// ErrInvalidBuffer indicates a buffer with no channels, no frames, ragged
	// channels or a non-positive sample rate.
	ErrInvalidBuffer = errors.New("invalid audio buffer")
	// ErrInvalidRate indicates a playback rate that is not strictly positive.
	ErrInvalidRate = errors.New("playback rate must be positive")
	// ErrInvalidGain indicates a negative gain.
	ErrInvalidGain = errors.New("gain must not be negative")
	// ErrInvalidWidth indicates a non-positive waveform width.
	ErrInvalidWidth = errors.New("waveform width must be positive")
)
