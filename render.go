package wavtrim

import (
	"context"
	"fmt"
	"math"
)

// RenderRequest describes one render or playback action.
type RenderRequest struct {
	Asset        *AudioAsset
	Range        TrimRange
	PlaybackRate float64
	Gain         float64
	Loop         bool
}

// Frames returns the clamped source frame window of the request.
func (r RenderRequest) Frames() (startFrame, endFrame int) {
	return r.Range.Frames(r.Asset.SampleRate(), r.Asset.NumFrames())
}

// Validate checks the request preconditions shared by rendering and playback.
func (r RenderRequest) Validate() error {
	if r.Asset == nil {
		return ErrNoAssetLoaded
	}

	if err := validateRate(r.PlaybackRate); err != nil {
		return err
	}

	if err := validateGain(r.Gain); err != nil {
		return err
	}

	if math.IsNaN(r.Range.Start) || math.IsNaN(r.Range.End) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidRange)
	}

	startFrame, endFrame := r.Frames()
	if endFrame <= startFrame {
		return fmt.Errorf("%w: frames [%d, %d)", ErrInvalidRange, startFrame, endFrame)
	}

	return nil
}

// RenderEngine realises the playback rate of a request. It must return a
// buffer with the asset's sample rate and channel count; outFrames is the
// frame count the caller expects. Gain is applied by the ClipRenderer, not by
// the engine.
type RenderEngine interface {
	Render(ctx context.Context, req RenderRequest, outFrames int) (*RenderedBuffer, error)
}

// ClipRenderer builds render requests, delegates the rate change to its
// engine and applies gain and clamping to the result.
type ClipRenderer struct {
	Engine RenderEngine
}

// NewClipRenderer returns a renderer using engine, or LinearEngine when nil.
func NewClipRenderer(engine RenderEngine) *ClipRenderer {
	if engine == nil {
		engine = LinearEngine{}
	}

	return &ClipRenderer{Engine: engine}
}

// OutFrames returns ceil((endFrame - startFrame) / rate), the length of the
// exported span once the playback rate is applied.
func OutFrames(startFrame, endFrame int, rate float64) int {
	span := endFrame - startFrame
	if span <= 0 || rate <= 0 {
		return 0
	}

	return int(math.Ceil(float64(span) / rate))
}

// Render produces a new buffer holding range of asset at the given playback
// rate and gain. Neither asset nor range is modified.
func (c *ClipRenderer) Render(ctx context.Context, asset *AudioAsset, rng TrimRange, rate, gain float64) (*RenderedBuffer, error) {
	req := RenderRequest{
		Asset:        asset,
		Range:        rng,
		PlaybackRate: rate,
		Gain:         gain,
	}

	return c.Process(ctx, req)
}

// Process is Render for a prepared request.
func (c *ClipRenderer) Process(ctx context.Context, req RenderRequest) (*RenderedBuffer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startFrame, endFrame := req.Frames()
	outFrames := OutFrames(startFrame, endFrame, req.PlaybackRate)

	engine := c.Engine
	if engine == nil {
		engine = LinearEngine{}
	}

	rendered, err := engine.Render(ctx, req, outFrames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderEngine, err)
	}

	if rendered == nil {
		return nil, fmt.Errorf("%w: engine returned no buffer", ErrRenderEngine)
	}

	if rendered.NumChannels() != req.Asset.NumChannels() {
		return nil, fmt.Errorf("%w: engine returned %d channels, want %d",
			ErrRenderEngine, rendered.NumChannels(), req.Asset.NumChannels())
	}

	if rendered.SampleRate != 0 && rendered.SampleRate != req.Asset.SampleRate() {
		return nil, fmt.Errorf("%w: engine returned %d Hz, want %d",
			ErrRenderEngine, rendered.SampleRate, req.Asset.SampleRate())
	}

	gain := float32(req.Gain)
	out := &RenderedBuffer{
		SampleRate: req.Asset.SampleRate(),
		Channels:   make([][]float32, len(rendered.Channels)),
	}

	for ch, src := range rendered.Channels {
		// shorter engine output is padded with silence, longer is cut
		dst := make([]float32, outFrames)
		n := min(len(src), outFrames)

		for i := range n {
			dst[i] = clampFloat32(src[i]*gain, -1, 1)
		}

		out.Channels[ch] = dst
	}

	return out, nil
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}

	return nil
}

func validateGain(gain float64) error {
	if math.IsNaN(gain) || math.IsInf(gain, 0) || gain < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidGain, gain)
	}

	return nil
}
