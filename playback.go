package wavtrim

import (
	"fmt"
	"slices"
	"sync"
)

// PlaybackHandle identifies one preview started on an OutputSink. The zero
// value means no playback.
type PlaybackHandle uint64

// PlayRequest is what a PlaybackController hands to its OutputSink.
type PlayRequest struct {
	Asset *AudioAsset
	// Offset is the start of the trim range in seconds.
	Offset float64
	// Duration is the trim span in seconds.
	Duration float64
	Rate     float64
	Gain     float64
	Loop     bool
}

// Range returns the trim range the request covers.
func (r PlayRequest) Range() TrimRange {
	return TrimRange{Start: r.Offset, End: r.Offset + r.Duration}
}

// OutputSink is the audio output the controller drives.
//
// The callback registered with OnFinish must be called only when a
// playback reaches its natural end, never because of Stop, and never from
// inside Play or Stop.
type OutputSink interface {
	Play(req PlayRequest) (PlaybackHandle, error)
	Stop(h PlaybackHandle) error
	OnFinish(fn func(PlaybackHandle))
}

// PlaybackController keeps at most one preview active. Starting a new one
// stops the previous one first, and only natural completion is reported.
type PlaybackController struct {
	sink OutputSink

	// opMu orders Play and Stop calls on the sink.
	opMu sync.Mutex

	mu           sync.Mutex
	active       PlaybackHandle
	lastFinished PlaybackHandle
	listeners    []func(PlaybackHandle)
	finished     chan PlaybackHandle
}

// NewPlaybackController registers itself for finish events on sink.
func NewPlaybackController(sink OutputSink) *PlaybackController {
	c := &PlaybackController{
		sink:     sink,
		finished: make(chan PlaybackHandle, 1),
	}
	sink.OnFinish(c.handleFinish)

	return c
}

// Play starts a preview of rng. Any active preview is stopped, without a
// finish notification, before the new one is started.
func (c *PlaybackController) Play(asset *AudioAsset, rng TrimRange, rate, gain float64, loop bool) (PlaybackHandle, error) {
	req := RenderRequest{Asset: asset, Range: rng, PlaybackRate: rate, Gain: gain, Loop: loop}
	if err := req.Validate(); err != nil {
		return 0, err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.stopActive(); err != nil {
		return 0, err
	}

	h, err := c.sink.Play(PlayRequest{
		Asset:    asset,
		Offset:   rng.Start,
		Duration: rng.Span(),
		Rate:     rate,
		Gain:     gain,
		Loop:     loop,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSink, err)
	}

	c.mu.Lock()
	if c.lastFinished == h {
		// the sink finished before Play returned
		c.lastFinished = 0
		c.mu.Unlock()
		c.notify(h)

		return h, nil
	}

	c.active = h
	c.mu.Unlock()

	return h, nil
}

// Stop stops h if it is the active preview. Stopping an inactive handle is a
// no-op. No finish notification is raised.
func (c *PlaybackController) Stop(h PlaybackHandle) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if h == 0 || h != c.active {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.stopActive()
}

// StopActive stops whatever preview is playing.
func (c *PlaybackController) StopActive() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.stopActive()
}

// Active returns the playing handle, or 0.
func (c *PlaybackController) Active() PlaybackHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active
}

// Finished delivers handles that reached their natural end. Events are
// dropped when nobody drains the channel.
func (c *PlaybackController) Finished() <-chan PlaybackHandle {
	return c.finished
}

// OnFinished registers fn for natural completion events.
func (c *PlaybackController) OnFinished(fn func(PlaybackHandle)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, fn)
}

// stopActive must be called with opMu held.
func (c *PlaybackController) stopActive() error {
	c.mu.Lock()
	prev := c.active
	c.active = 0
	c.mu.Unlock()

	if prev == 0 {
		return nil
	}

	if err := c.sink.Stop(prev); err != nil {
		return fmt.Errorf("%w: stopping playback %d: %w", ErrSink, prev, err)
	}

	return nil
}

func (c *PlaybackController) handleFinish(h PlaybackHandle) {
	c.mu.Lock()
	if h == 0 || h != c.active {
		// superseded, stopped, or not registered yet
		c.lastFinished = h
		c.mu.Unlock()

		return
	}

	c.active = 0
	c.mu.Unlock()

	c.notify(h)
}

func (c *PlaybackController) notify(h PlaybackHandle) {
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(h)
	}

	select {
	case c.finished <- h:
	default:
	}
}
