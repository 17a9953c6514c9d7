package wavtrim

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
)

func assetDecoder(asset *AudioAsset) Decoder {
	return DecoderFunc(func(context.Context, []byte) (*AudioAsset, error) {
		return asset, nil
	})
}

func TestSession_RequiresAsset(t *testing.T) {
	s := NewSession(WithOutputSink(&fakeSink{}))

	if s.ControlsEnabled() {
		t.Fatal("controls enabled before load")
	}

	if s.TrimLabel() != "" {
		t.Fatalf("label=%q before load, want empty", s.TrimLabel())
	}

	calls := map[string]func() error{
		"Trim":          func() error { _, err := s.Trim(); return err },
		"SetTrimStart":  func() error { _, err := s.SetTrimStart(1); return err },
		"SetTrimEnd":    func() error { _, err := s.SetTrimEnd(1); return err },
		"Play":          func() error { _, err := s.Play(); return err },
		"Export":        func() error { _, err := s.Export(context.Background()); return err },
		"Waveform":      func() error { _, err := s.Waveform(10); return err },
		"FullWaveform":  func() error { _, err := s.FullWaveform(10); return err },
		"SetAsset(nil)": func() error { return s.SetAsset(nil) },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrNoAssetLoaded) {
			t.Fatalf("%s: error=%v, want ErrNoAssetLoaded", name, err)
		}
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop before load: %v", err)
	}
}

func TestSession_LoadFailureKeepsState(t *testing.T) {
	errCorrupt := errors.New("corrupt header")
	good := newTestAsset(t, 100, 1, 100, constant(0))

	loads := 0
	s := NewSession(WithDecoder(DecoderFunc(func(context.Context, []byte) (*AudioAsset, error) {
		loads++
		if loads == 1 {
			return good, nil
		}

		return nil, errCorrupt
	})))

	if err := s.Load(context.Background(), []byte("first")); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	if _, err := s.SetTrimStart(0.4); err != nil {
		t.Fatal(err)
	}

	err := s.Load(context.Background(), []byte("second"))
	if !errors.Is(err, ErrDecode) || !errors.Is(err, errCorrupt) {
		t.Fatalf("error=%v, want ErrDecode wrapping the decoder error", err)
	}

	if s.Asset() != good {
		t.Fatal("failed load replaced the asset")
	}

	if r, _ := s.Trim(); r.Start != 0.4 {
		t.Fatalf("trim=%+v, want start 0.4 kept", r)
	}
}

func TestSession_LoadWithoutDecoder(t *testing.T) {
	if err := NewSession().Load(context.Background(), nil); !errors.Is(err, ErrDecode) {
		t.Fatalf("error=%v, want ErrDecode", err)
	}
}

func TestSession_LoadResetsTrimAndStopsPreview(t *testing.T) {
	sink := &fakeSink{}
	first := newTestAsset(t, 100, 1, 300, constant(0))
	second := newTestAsset(t, 100, 1, 150, constant(0))

	s := NewSession(WithOutputSink(sink))
	if err := s.SetAsset(first); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetTrimEnd(2); err != nil {
		t.Fatal(err)
	}

	h, err := s.Play()
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if s.Playing() != h {
		t.Fatalf("playing=%d, want %d", s.Playing(), h)
	}

	if err := s.SetAsset(second); err != nil {
		t.Fatal(err)
	}

	if r, _ := s.Trim(); r != (TrimRange{0, 1.5}) {
		t.Fatalf("trim=%+v, want [0, 1.5]", r)
	}

	if s.Playing() != 0 || len(sink.stopped) != 1 {
		t.Fatalf("preview not stopped on load: playing=%d stopped=%v", s.Playing(), sink.stopped)
	}

	if !s.ControlsEnabled() || s.TrimLabel() != "Trim Range: Full" {
		t.Fatalf("controls=%v label=%q", s.ControlsEnabled(), s.TrimLabel())
	}
}

func TestSession_ExportUsesTrimRateAndGain(t *testing.T) {
	asset := newTestAsset(t, 44100, 1, 2*44100, constant(0.25))
	s := NewSession(WithDecoder(assetDecoder(asset)))

	if err := s.Load(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetTrimStart(0.5); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetTrimEnd(1.5); err != nil {
		t.Fatal(err)
	}

	if err := s.SetGain(2); err != nil {
		t.Fatal(err)
	}

	if err := s.SetPlaybackRate(0.5); err != nil {
		t.Fatal(err)
	}

	s.SetLoop(true)

	out, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if out.Filename != "processed_audio.wav" {
		t.Fatalf("filename=%q", out.Filename)
	}

	if out.Frames != 88200 || out.Channels != 1 {
		t.Fatalf("frames=%d channels=%d, want 88200 and 1", out.Frames, out.Channels)
	}

	if len(out.Data) != HeaderSize+88200*2 {
		t.Fatalf("len=%d, want %d", len(out.Data), HeaderSize+88200*2)
	}

	// 0.25 * gain 2
	if got := int16(binary.LittleEndian.Uint16(out.Data[HeaderSize:])); got != 16384 {
		t.Fatalf("first sample=%d, want 16384", got)
	}
}

func TestSession_SettingsValidation(t *testing.T) {
	s := NewSession(WithSettings(Settings{PlaybackRate: 1.25, Gain: 0.5}))

	if got := s.Settings(); got.PlaybackRate != 1.25 || got.Gain != 0.5 {
		t.Fatalf("settings=%+v", got)
	}

	if err := s.SetPlaybackRate(0); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("error=%v, want ErrInvalidRate", err)
	}

	if err := s.SetGain(-1); !errors.Is(err, ErrInvalidGain) {
		t.Fatalf("error=%v, want ErrInvalidGain", err)
	}

	if got := s.Settings(); got.PlaybackRate != 1.25 || got.Gain != 0.5 {
		t.Fatalf("rejected values changed settings to %+v", got)
	}
}

func TestSession_PlayWithoutSink(t *testing.T) {
	s := NewSession()
	if err := s.SetAsset(newTestAsset(t, 100, 1, 100, constant(0))); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Play(); !errors.Is(err, ErrSink) {
		t.Fatalf("error=%v, want ErrSink", err)
	}

	if s.Playing() != 0 {
		t.Fatal("playing without a sink")
	}
}

func TestSession_NaturalEndRedrawsFullWaveform(t *testing.T) {
	sink := &fakeSink{}
	asset := newTestAsset(t, 100, 1, 200, ramp(200))

	s := NewSession(WithOutputSink(sink), WithWaveformWidth(4))
	if err := s.SetAsset(asset); err != nil {
		t.Fatal(err)
	}

	var redraws [][]WaveformPoint
	s.OnPlaybackFinished(func(points []WaveformPoint) { redraws = append(redraws, points) })

	if _, err := s.SetTrimStart(1); err != nil {
		t.Fatal(err)
	}

	first, err := s.Play()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	sink.finish(first)

	if len(redraws) != 0 {
		t.Fatalf("stopped preview triggered %d redraws", len(redraws))
	}

	second, err := s.Play()
	if err != nil {
		t.Fatal(err)
	}

	sink.finish(second)

	if len(redraws) != 1 {
		t.Fatalf("redraws=%d, want 1", len(redraws))
	}

	want, err := FullWaveform(asset, 4)
	if err != nil {
		t.Fatal(err)
	}

	for i := range want {
		if redraws[0][i] != want[i] {
			t.Fatalf("redraw point %d=%+v, want %+v of the untrimmed clip", i, redraws[0][i], want[i])
		}
	}

	trimmed, err := s.Waveform(4)
	if err != nil {
		t.Fatal(err)
	}

	if trimmed[0] == want[0] {
		t.Fatal("trimmed waveform should differ from the full one")
	}
}
