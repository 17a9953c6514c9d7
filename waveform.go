package wavtrim

import (
	"fmt"
	"math"
	"strings"
)

// WaveformPoint holds the extrema of one display column. Min <= Max.
type WaveformPoint struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Segment maps the point onto a drawing surface of the given height. The
// vertical axis is inverted: y0 = center - Min*amp and y1 = center - Max*amp,
// with center = amp = height/2.
func (p WaveformPoint) Segment(height float64) (y0, y1 float64) {
	amp := height / 2

	return amp - float64(p.Min)*amp, amp - float64(p.Max)*amp
}

// MaxWaveformWidth bounds the column count accepted by Downsample.
const MaxWaveformWidth = 1 << 16

// Downsample reduces samples to exactly width points. Column i covers
// [i*step, min((i+1)*step, len(samples))) with step = ceil(len(samples)/width)
// and is scanned once for both extrema. Columns past the end of the input are
// {0, 0}.
func Downsample(samples []float32, width int) ([]WaveformPoint, error) {
	if width <= 0 || width > MaxWaveformWidth {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWidth, width, MaxWaveformWidth)
	}

	points := make([]WaveformPoint, width)

	n := len(samples)
	if n == 0 {
		return points, nil
	}

	step := (n + width - 1) / width

	for i := range points {
		lo := i * step
		if lo >= n {
			break
		}

		hi := min(lo+step, n)

		lowest, highest := samples[lo], samples[lo]
		for _, s := range samples[lo+1 : hi] {
			if s < lowest {
				lowest = s
			} else if s > highest {
				highest = s
			}
		}

		points[i] = WaveformPoint{Min: lowest, Max: highest}
	}

	return points, nil
}

// Waveform downsamples the first channel of asset over rng.
func Waveform(asset *AudioAsset, rng TrimRange, width int) ([]WaveformPoint, error) {
	if asset == nil {
		return nil, ErrNoAssetLoaded
	}

	startFrame, endFrame := rng.Frames(asset.SampleRate(), asset.NumFrames())
	if endFrame < startFrame {
		endFrame = startFrame
	}

	return Downsample(asset.channels()[0][startFrame:endFrame], width)
}

// FullWaveform downsamples the first channel of the whole clip.
func FullWaveform(asset *AudioAsset, width int) ([]WaveformPoint, error) {
	return Waveform(asset, NewTrimRange(asset.Duration()), width)
}

// RenderASCII draws one vertical bar per point into a text grid of the given
// height, using the same inverted axis as Segment.
func RenderASCII(points []WaveformPoint, height int) string {
	if height <= 0 || len(points) == 0 {
		return ""
	}

	grid := make([][]byte, height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", len(points)))
	}

	for col, p := range points {
		y0, y1 := p.Segment(float64(height))

		top := clampInt(int(math.Floor(y1)), 0, height-1)
		bottom := clampInt(int(math.Floor(y0)), 0, height-1)

		for r := top; r <= bottom; r++ {
			grid[r][col] = '#'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.Write(row)
		sb.WriteByte('\n')
	}

	return sb.String()
}
