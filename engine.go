package wavtrim

import (
	"context"
	"math"
)

// LinearEngine realises a playback rate by reading the source at
// startFrame + i*rate and interpolating linearly between neighbouring frames,
// the way a buffer source node does when its playback rate is not 1. Pitch
// follows the rate. Reads never go past the end of the requested range.
type LinearEngine struct{}

// Render implements RenderEngine.
func (LinearEngine) Render(ctx context.Context, req RenderRequest, outFrames int) (*RenderedBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startFrame, endFrame := req.Frames()
	src := req.Asset.channels()

	out := &RenderedBuffer{
		SampleRate: req.Asset.SampleRate(),
		Channels:   make([][]float32, len(src)),
	}

	for ch, samples := range src {
		out.Channels[ch] = resampleLinear(samples[startFrame:endFrame], req.PlaybackRate, outFrames)
	}

	return out, nil
}

func resampleLinear(window []float32, rate float64, outFrames int) []float32 {
	dst := make([]float32, outFrames)
	last := len(window) - 1

	if last < 0 {
		return dst
	}

	if rate == 1 {
		copy(dst, window)
		return dst
	}

	for i := range dst {
		pos := float64(i) * rate
		idx := int(math.Floor(pos))

		if idx >= last {
			if idx == last {
				dst[i] = window[last]
			}

			continue
		}

		frac := float32(pos - float64(idx))
		dst[i] = window[idx] + (window[idx+1]-window[idx])*frac
	}

	return dst
}
