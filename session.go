package wavtrim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// DefaultWaveformWidth is the column count used for redraws when no width is
// configured.
const DefaultWaveformWidth = 800

var errNoDecoder = errors.New("no decoder configured")

// Decoder turns raw file bytes into an AudioAsset.
type Decoder interface {
	Decode(ctx context.Context, raw []byte) (*AudioAsset, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, raw []byte) (*AudioAsset, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(ctx context.Context, raw []byte) (*AudioAsset, error) {
	return f(ctx, raw)
}

// Settings are the preview and export controls.
type Settings struct {
	PlaybackRate float64
	Gain         float64
	Loop         bool
}

// DefaultSettings plays at unity rate and gain without looping.
func DefaultSettings() Settings {
	return Settings{PlaybackRate: 1, Gain: 1}
}

// Export is a rendered WAV file ready to be saved by the host.
type Export struct {
	Data     []byte
	Filename string
	Frames   int
	Channels int
}

// Option configures a Session.
type Option func(*Session)

// WithDecoder sets the decoder used by Load.
func WithDecoder(d Decoder) Option {
	return func(s *Session) { s.decoder = d }
}

// WithRenderEngine sets the engine used for exports.
func WithRenderEngine(e RenderEngine) Option {
	return func(s *Session) { s.renderer = NewClipRenderer(e) }
}

// WithOutputSink enables preview playback through sink.
func WithOutputSink(sink OutputSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithWaveformWidth sets the width of the redraw raised after playback ends.
func WithWaveformWidth(width int) Option {
	return func(s *Session) { s.width = width }
}

// WithSettings sets the initial controls.
func WithSettings(settings Settings) Option {
	return func(s *Session) { s.settings = settings }
}

// Session is the state of one editing session: the loaded clip, its trim
// range, the controls and the preview player. Its lifecycle starts with a
// successful Load; a later Load replaces the clip and resets the range.
// A Session is safe for concurrent use.
type Session struct {
	decoder  Decoder
	renderer *ClipRenderer
	sink     OutputSink
	player   *PlaybackController
	width    int

	mu       sync.RWMutex
	asset    *AudioAsset
	trim     TrimRange
	settings Settings
	redraw   []func([]WaveformPoint)
}

// NewSession creates an empty session. Preview playback is only available
// when an OutputSink is configured.
func NewSession(opts ...Option) *Session {
	s := &Session{
		renderer: NewClipRenderer(nil),
		width:    DefaultWaveformWidth,
		settings: DefaultSettings(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.width <= 0 {
		s.width = DefaultWaveformWidth
	}

	if s.sink != nil {
		s.player = NewPlaybackController(s.sink)
		s.player.OnFinished(s.playbackFinished)
	}

	return s
}

// Load decodes raw and makes it the current clip. On failure the previous
// state is kept and the error wraps ErrDecode.
func (s *Session) Load(ctx context.Context, raw []byte) error {
	if s.decoder == nil {
		return fmt.Errorf("%w: %w", ErrDecode, errNoDecoder)
	}

	asset, err := s.decoder.Decode(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if asset == nil {
		return fmt.Errorf("%w: decoder returned no asset", ErrDecode)
	}

	return s.SetAsset(asset)
}

// SetAsset makes asset the current clip, resets the trim range to the full
// clip and stops any preview.
func (s *Session) SetAsset(asset *AudioAsset) error {
	if asset == nil {
		return ErrNoAssetLoaded
	}

	s.mu.Lock()
	s.asset = asset
	s.trim = NewTrimRange(asset.Duration())
	s.mu.Unlock()

	if s.player == nil {
		return nil
	}

	if err := s.player.StopActive(); err != nil {
		return fmt.Errorf("clip loaded but the previous preview did not stop: %w", err)
	}

	return nil
}

// Asset returns the current clip, or nil.
func (s *Session) Asset() *AudioAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.asset
}

// ControlsEnabled reports whether play and export are available.
func (s *Session) ControlsEnabled() bool {
	return s.Asset() != nil
}

// Trim returns the current trim range.
func (s *Session) Trim() (TrimRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.asset == nil {
		return TrimRange{}, ErrNoAssetLoaded
	}

	return s.trim, nil
}

// TrimLabel describes the current trim range for display.
func (s *Session) TrimLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.asset == nil {
		return ""
	}

	return s.trim.Label(s.asset.Duration())
}

// SetTrimStart moves the start edge; see TrimRange.SetStart.
func (s *Session) SetTrimStart(value float64) (TrimRange, error) {
	return s.updateTrim(func(r TrimRange, duration float64) TrimRange {
		return r.SetStart(value, duration)
	})
}

// SetTrimEnd moves the end edge; see TrimRange.SetEnd.
func (s *Session) SetTrimEnd(value float64) (TrimRange, error) {
	return s.updateTrim(func(r TrimRange, duration float64) TrimRange {
		return r.SetEnd(value, duration)
	})
}

func (s *Session) updateTrim(update func(TrimRange, float64) TrimRange) (TrimRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.asset == nil {
		return TrimRange{}, ErrNoAssetLoaded
	}

	s.trim = update(s.trim, s.asset.Duration())

	return s.trim, nil
}

// Settings returns the current controls.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// SetPlaybackRate sets the rate used by Play and Export.
func (s *Session) SetPlaybackRate(rate float64) error {
	if err := validateRate(rate); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings.PlaybackRate = rate
	s.mu.Unlock()

	return nil
}

// SetGain sets the gain used by Play and Export.
func (s *Session) SetGain(gain float64) error {
	if err := validateGain(gain); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings.Gain = gain
	s.mu.Unlock()

	return nil
}

// SetLoop sets whether previews loop.
func (s *Session) SetLoop(loop bool) {
	s.mu.Lock()
	s.settings.Loop = loop
	s.mu.Unlock()
}

func (s *Session) snapshot() (*AudioAsset, TrimRange, Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.asset == nil {
		return nil, TrimRange{}, Settings{}, ErrNoAssetLoaded
	}

	return s.asset, s.trim, s.settings, nil
}

// Play starts a preview of the trimmed range, replacing any active one.
func (s *Session) Play() (PlaybackHandle, error) {
	asset, rng, settings, err := s.snapshot()
	if err != nil {
		return 0, err
	}

	if s.player == nil {
		return 0, fmt.Errorf("%w: no output sink configured", ErrSink)
	}

	return s.player.Play(asset, rng, settings.PlaybackRate, settings.Gain, settings.Loop)
}

// Stop stops the active preview, if any.
func (s *Session) Stop() error {
	if s.player == nil {
		return nil
	}

	return s.player.StopActive()
}

// Playing returns the active preview handle, or 0.
func (s *Session) Playing() PlaybackHandle {
	if s.player == nil {
		return 0
	}

	return s.player.Active()
}

// Export renders the trimmed range with the current rate and gain and encodes
// it as WAV.
func (s *Session) Export(ctx context.Context) (*Export, error) {
	asset, rng, settings, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	rendered, err := s.renderer.Render(ctx, asset, rng, settings.PlaybackRate, settings.Gain)
	if err != nil {
		return nil, err
	}

	data, err := EncodeWAV(rendered)
	if err != nil {
		return nil, err
	}

	return &Export{
		Data:     data,
		Filename: SuggestedFilename,
		Frames:   rendered.NumFrames(),
		Channels: rendered.NumChannels(),
	}, nil
}

// Waveform downsamples the trimmed range.
func (s *Session) Waveform(width int) ([]WaveformPoint, error) {
	asset, rng, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	return Waveform(asset, rng, width)
}

// FullWaveform downsamples the whole clip.
func (s *Session) FullWaveform(width int) ([]WaveformPoint, error) {
	asset, _, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	return FullWaveform(asset, width)
}

// OnPlaybackFinished registers fn to receive the full, untrimmed waveform
// each time a preview reaches its natural end.
func (s *Session) OnPlaybackFinished(fn func([]WaveformPoint)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redraw = append(s.redraw, fn)
}

func (s *Session) playbackFinished(PlaybackHandle) {
	s.mu.RLock()
	asset := s.asset
	listeners := slices.Clone(s.redraw)
	s.mu.RUnlock()

	if asset == nil || len(listeners) == 0 {
		return
	}

	points, err := FullWaveform(asset, s.width)
	if err != nil {
		return
	}

	for _, fn := range listeners {
		fn(points)
	}
}
