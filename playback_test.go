package wavtrim

import (
	"errors"
	"sync"
	"testing"
)

// fakeSink records calls and lets tests end playbacks by hand.
type fakeSink struct {
	mu       sync.Mutex
	next     PlaybackHandle
	requests []PlayRequest
	stopped  []PlaybackHandle
	onFinish func(PlaybackHandle)

	playErr error
	stopErr error
	// finishEarly ends every playback before Play returns, as a fast
	// output thread could.
	finishEarly bool
}

func (s *fakeSink) Play(req PlayRequest) (PlaybackHandle, error) {
	s.mu.Lock()
	if s.playErr != nil {
		s.mu.Unlock()
		return 0, s.playErr
	}

	s.next++
	h := s.next
	s.requests = append(s.requests, req)
	fn := s.onFinish
	early := s.finishEarly
	s.mu.Unlock()

	if early && fn != nil {
		fn(h)
	}

	return h, nil
}

func (s *fakeSink) Stop(h PlaybackHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopErr != nil {
		return s.stopErr
	}

	s.stopped = append(s.stopped, h)

	return nil
}

func (s *fakeSink) OnFinish(fn func(PlaybackHandle)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onFinish = fn
}

func (s *fakeSink) finish(h PlaybackHandle) {
	s.mu.Lock()
	fn := s.onFinish
	s.mu.Unlock()

	fn(h)
}

type finishRecorder struct {
	mu  sync.Mutex
	got []PlaybackHandle
}

func (r *finishRecorder) record(h PlaybackHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.got = append(r.got, h)
}

func (r *finishRecorder) handles() []PlaybackHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]PlaybackHandle(nil), r.got...)
}

func newTestController(t *testing.T) (*PlaybackController, *fakeSink, *finishRecorder, *AudioAsset) {
	t.Helper()

	sink := &fakeSink{}
	rec := &finishRecorder{}
	c := NewPlaybackController(sink)
	c.OnFinished(rec.record)

	return c, sink, rec, newTestAsset(t, 1000, 1, 2000, constant(0.1))
}

func TestPlaybackController_PlayPassesRequest(t *testing.T) {
	c, sink, _, asset := newTestController(t)

	h, err := c.Play(asset, TrimRange{0.5, 1.25}, 1.5, 0.8, true)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if c.Active() != h {
		t.Fatalf("active=%d, want %d", c.Active(), h)
	}

	req := sink.requests[0]
	if req.Offset != 0.5 || req.Duration != 0.75 || req.Rate != 1.5 || req.Gain != 0.8 || !req.Loop {
		t.Fatalf("request=%+v", req)
	}

	if req.Range() != (TrimRange{0.5, 1.25}) {
		t.Fatalf("range=%+v, want [0.5, 1.25]", req.Range())
	}
}

func TestPlaybackController_NewPlaySupersedesWithoutNotification(t *testing.T) {
	c, sink, rec, asset := newTestController(t)

	first, err := c.Play(asset, NewTrimRange(2), 1, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	second, err := c.Play(asset, NewTrimRange(2), 1, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(sink.stopped) != 1 || sink.stopped[0] != first {
		t.Fatalf("stopped=%v, want [%d]", sink.stopped, first)
	}

	// a late end of the superseded preview must be ignored
	sink.finish(first)

	if got := rec.handles(); len(got) != 0 {
		t.Fatalf("finish notifications=%v, want none", got)
	}

	if c.Active() != second {
		t.Fatalf("active=%d, want %d", c.Active(), second)
	}
}

func TestPlaybackController_NaturalFinishNotifies(t *testing.T) {
	c, sink, rec, asset := newTestController(t)

	h, err := c.Play(asset, NewTrimRange(2), 1, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	sink.finish(h)

	if got := rec.handles(); len(got) != 1 || got[0] != h {
		t.Fatalf("finish notifications=%v, want [%d]", got, h)
	}

	select {
	case got := <-c.Finished():
		if got != h {
			t.Fatalf("finished channel delivered %d, want %d", got, h)
		}
	default:
		t.Fatal("finished channel is empty")
	}

	if c.Active() != 0 {
		t.Fatalf("active=%d after finish, want 0", c.Active())
	}

	// repeated finish events are ignored
	sink.finish(h)

	if got := rec.handles(); len(got) != 1 {
		t.Fatalf("finish notifications=%v, want one", got)
	}
}

func TestPlaybackController_StopSuppressesNotification(t *testing.T) {
	c, sink, rec, asset := newTestController(t)

	h, err := c.Play(asset, NewTrimRange(2), 1, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Stop(h); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	sink.finish(h)

	if got := rec.handles(); len(got) != 0 {
		t.Fatalf("finish notifications=%v, want none", got)
	}

	// stopping an inactive handle is a no-op
	if err := c.Stop(h); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}

	if err := c.StopActive(); err != nil {
		t.Fatalf("StopActive failed: %v", err)
	}

	if len(sink.stopped) != 1 {
		t.Fatalf("sink stopped %d times, want 1", len(sink.stopped))
	}
}

func TestPlaybackController_FinishBeforePlayReturns(t *testing.T) {
	c, sink, rec, asset := newTestController(t)
	sink.finishEarly = true

	h, err := c.Play(asset, NewTrimRange(2), 4, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if got := rec.handles(); len(got) != 1 || got[0] != h {
		t.Fatalf("finish notifications=%v, want [%d]", got, h)
	}

	if c.Active() != 0 {
		t.Fatalf("active=%d, want 0", c.Active())
	}
}

func TestPlaybackController_Errors(t *testing.T) {
	c, sink, _, asset := newTestController(t)

	if _, err := c.Play(nil, TrimRange{0, 1}, 1, 1, false); !errors.Is(err, ErrNoAssetLoaded) {
		t.Fatalf("error=%v, want ErrNoAssetLoaded", err)
	}

	if _, err := c.Play(asset, TrimRange{1, 1}, 1, 1, false); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error=%v, want ErrInvalidRange", err)
	}

	if _, err := c.Play(asset, TrimRange{0, 1}, 0, 1, false); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("error=%v, want ErrInvalidRate", err)
	}

	if len(sink.requests) != 0 {
		t.Fatalf("sink received %d requests for invalid input", len(sink.requests))
	}

	errDevice := errors.New("device busy")
	sink.playErr = errDevice

	_, err := c.Play(asset, TrimRange{0, 1}, 1, 1, false)
	if !errors.Is(err, ErrSink) || !errors.Is(err, errDevice) {
		t.Fatalf("error=%v, want ErrSink wrapping the device error", err)
	}

	sink.playErr = nil

	if _, err := c.Play(asset, TrimRange{0, 1}, 1, 1, false); err != nil {
		t.Fatal(err)
	}

	sink.stopErr = errDevice

	if err := c.StopActive(); !errors.Is(err, ErrSink) {
		t.Fatalf("error=%v, want ErrSink", err)
	}
}
