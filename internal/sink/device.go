// Package sink plays wavtrim previews on an audio output device.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/berlandbor/wavtrim"
)

var errUnknownHandle = errors.New("unknown playback handle")

// Player is one open output stream.
type Player interface {
	Start() error
	Close() error
}

// Output opens playback streams. fill is called from the audio thread and
// must write frames frames of interleaved little-endian float32 samples.
type Output interface {
	Open(channels, sampleRate int, fill func(out []byte, frames uint32)) (Player, error)
}

type playback struct {
	player  Player
	stream  *stream
	stopped chan struct{}
}

// Device implements wavtrim.OutputSink. Each preview is rendered up front
// with the same renderer used for exports, so what is heard is what gets
// saved.
type Device struct {
	out      Output
	renderer *wavtrim.ClipRenderer

	mu       sync.Mutex
	next     wavtrim.PlaybackHandle
	active   map[wavtrim.PlaybackHandle]*playback
	onFinish func(wavtrim.PlaybackHandle)
	wg       sync.WaitGroup
}

// NewDevice returns a sink playing through out. A nil renderer means the
// default linear one.
func NewDevice(out Output, renderer *wavtrim.ClipRenderer) *Device {
	if renderer == nil {
		renderer = wavtrim.NewClipRenderer(nil)
	}

	return &Device{
		out:      out,
		renderer: renderer,
		active:   make(map[wavtrim.PlaybackHandle]*playback),
	}
}

// Play implements wavtrim.OutputSink.
func (d *Device) Play(req wavtrim.PlayRequest) (wavtrim.PlaybackHandle, error) {
	rendered, err := d.renderer.Process(context.Background(), wavtrim.RenderRequest{
		Asset:        req.Asset,
		Range:        req.Range(),
		PlaybackRate: req.Rate,
		Gain:         req.Gain,
		Loop:         req.Loop,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to render preview: %w", err)
	}

	st := newStream(rendered.AsFloat32Buffer().Data, rendered.NumChannels(), req.Loop)

	player, err := d.out.Open(rendered.NumChannels(), rendered.SampleRate, st.fill)
	if err != nil {
		return 0, fmt.Errorf("failed to open output device: %w", err)
	}

	pb := &playback{player: player, stream: st, stopped: make(chan struct{})}

	d.mu.Lock()
	d.next++
	h := d.next
	d.active[h] = pb
	d.mu.Unlock()

	if err := player.Start(); err != nil {
		d.mu.Lock()
		delete(d.active, h)
		d.mu.Unlock()

		return 0, errors.Join(
			fmt.Errorf("failed to start output device: %w", err),
			player.Close(),
		)
	}

	d.wg.Add(1)

	go d.watch(h, pb)

	return h, nil
}

// watch reports h once its stream drains, unless it is stopped first.
func (d *Device) watch(h wavtrim.PlaybackHandle, pb *playback) {
	defer d.wg.Done()

	select {
	case <-pb.stopped:
		return
	case <-pb.stream.done:
	}

	d.mu.Lock()
	if d.active[h] != pb {
		d.mu.Unlock()
		return
	}

	delete(d.active, h)
	fn := d.onFinish
	d.mu.Unlock()

	pb.player.Close()

	if fn != nil {
		fn(h)
	}
}

// Stop implements wavtrim.OutputSink.
func (d *Device) Stop(h wavtrim.PlaybackHandle) error {
	d.mu.Lock()
	pb, ok := d.active[h]
	if ok {
		delete(d.active, h)
		close(pb.stopped)
	}
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", errUnknownHandle, h)
	}

	if err := pb.player.Close(); err != nil {
		return fmt.Errorf("failed to close output device: %w", err)
	}

	return nil
}

// OnFinish implements wavtrim.OutputSink.
func (d *Device) OnFinish(fn func(wavtrim.PlaybackHandle)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onFinish = fn
}

// Close stops every playback and waits for the watchers to exit.
func (d *Device) Close() error {
	d.mu.Lock()
	handles := make([]wavtrim.PlaybackHandle, 0, len(d.active))
	for h := range d.active {
		handles = append(handles, h)
	}
	d.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := d.Stop(h); err != nil && !errors.Is(err, errUnknownHandle) {
			errs = append(errs, err)
		}
	}

	d.wg.Wait()

	return errors.Join(errs...)
}
