package sink

import (
	"encoding/binary"
	"math"
	"sync"
)

const bytesPerSample = 4

// stream feeds interleaved float32 samples to a device callback. When a
// non-looping stream runs out it writes silence and closes done once.
type stream struct {
	mu       sync.Mutex
	samples  []float32
	channels int
	pos      int
	loop     bool

	done     chan struct{}
	finished bool
}

func newStream(samples []float32, channels int, loop bool) *stream {
	return &stream{
		samples:  samples,
		channels: channels,
		loop:     loop,
		done:     make(chan struct{}),
	}
}

// fill writes frames frames of little-endian float32 samples into out.
func (s *stream) fill(out []byte, frames uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(int(frames)*s.channels, len(out)/bytesPerSample)

	for i := range n {
		if s.pos >= len(s.samples) && s.loop && len(s.samples) > 0 {
			s.pos = 0
		}

		var v float32
		if s.pos < len(s.samples) {
			v = s.samples[s.pos]
			s.pos++
		}

		binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(v))
	}

	if !s.loop && s.pos >= len(s.samples) && !s.finished {
		s.finished = true
		close(s.done)
	}
}
