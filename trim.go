package wavtrim

import (
	"fmt"
	"math"
)

// MinTrimSpan is the smallest trim window, in seconds.
const MinTrimSpan = 0.1

// TrimRange is the [Start, End) window selected for preview and export, in
// seconds.
type TrimRange struct {
	Start float64
	End   float64
}

// NewTrimRange returns the full range of a clip of the given duration.
func NewTrimRange(duration float64) TrimRange {
	return TrimRange{Start: 0, End: math.Max(duration, 0)}
}

// Span returns End - Start.
func (r TrimRange) Span() float64 {
	return r.End - r.Start
}

// SetStart moves the start edge to value. The new start is clamped into the
// clip and kept at least MinTrimSpan before End; End is never moved.
func (r TrimRange) SetStart(value, duration float64) TrimRange {
	if math.IsNaN(value) {
		return r
	}

	value = math.Min(value, duration)
	value = math.Min(value, latestStart(r.End))
	value = math.Max(value, 0)

	r.Start = value

	return r
}

// SetEnd moves the end edge to value. The new end is clamped into the clip and
// kept at least MinTrimSpan after Start; Start is never moved.
func (r TrimRange) SetEnd(value, duration float64) TrimRange {
	if math.IsNaN(value) {
		return r
	}

	value = math.Max(value, 0)
	value = math.Max(value, earliestEnd(r.Start))
	value = math.Min(value, duration)

	r.End = value

	return r
}

// Validate reports whether the range lies inside a clip of the given duration
// and ends after it starts.
func (r TrimRange) Validate(duration float64) error {
	if math.IsNaN(r.Start) || math.IsNaN(r.End) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidRange)
	}

	if r.Start < 0 {
		return fmt.Errorf("%w: start %.3fs before clip start", ErrInvalidRange, r.Start)
	}

	if r.End > duration {
		return fmt.Errorf("%w: end %.3fs after clip end %.3fs", ErrInvalidRange, r.End, duration)
	}

	if r.End <= r.Start {
		return fmt.Errorf("%w: end %.3fs not after start %.3fs", ErrInvalidRange, r.End, r.Start)
	}

	return nil
}

// Frames converts the range to frame indexes: floor(Start*sampleRate) and
// floor(End*sampleRate), both clamped to [0, frameCount].
func (r TrimRange) Frames(sampleRate, frameCount int) (startFrame, endFrame int) {
	return frameIndex(r.Start, sampleRate, frameCount), frameIndex(r.End, sampleRate, frameCount)
}

// frameIndex clamps in float64 so that huge or infinite times never reach the
// int conversion.
func frameIndex(t float64, sampleRate, frameCount int) int {
	x := math.Floor(t * float64(sampleRate))

	switch {
	case math.IsNaN(x) || x <= 0:
		return 0
	case x >= float64(frameCount):
		return frameCount
	default:
		return int(x)
	}
}

// IsFull reports whether the range covers the whole clip.
func (r TrimRange) IsFull(duration float64) bool {
	return r.Start <= 0 && r.End >= duration
}

// Label formats the range for display.
func (r TrimRange) Label(duration float64) string {
	if r.IsFull(duration) {
		return "Trim Range: Full"
	}

	return fmt.Sprintf("Trim Range: %.1fs - %.1fs", r.Start, r.End)
}

// latestStart returns the largest start whose distance to end is at least
// MinTrimSpan once rounded to float64.
func latestStart(end float64) float64 {
	start := end - MinTrimSpan
	for end-start < MinTrimSpan {
		start = math.Nextafter(start, math.Inf(-1))
	}

	return start
}

// earliestEnd is the mirror of latestStart.
func earliestEnd(start float64) float64 {
	end := start + MinTrimSpan
	for end-start < MinTrimSpan {
		end = math.Nextafter(end, math.Inf(1))
	}

	return end
}
