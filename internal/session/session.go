// Package session owns the state of one keyclip take: the decoded buffer, the
// event timeline, the viewport and playback. Input arrives as messages in an
// ordered inbox that the host drains on its own loop; every other operation
// is a direct call from that loop.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability/metrics"
	"github.com/tphakala/keyclip/internal/timeline"
	"github.com/tphakala/keyclip/internal/viewport"
	"github.com/tphakala/keyclip/internal/waveform"
)

const componentSession = "session"

// frameCacheTTL is how long a rendered frame stays cached.
const frameCacheTTL = 30 * time.Second

// Config holds session tunables.
type Config struct {
	HalfWindow   float64
	HitThreshold float64
	MinZoom      float64
	MaxZoom      float64
	PollInterval time.Duration
	Mode         waveform.Mode
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		HalfWindow:   timeline.DefaultHalfWindow,
		HitThreshold: timeline.DefaultHitThreshold,
		MinZoom:      viewport.DefaultMinZoom,
		MaxZoom:      viewport.DefaultMaxZoom,
		PollInterval: 50 * time.Millisecond,
		Mode:         waveform.ModeWaveform,
	}
}

// ConfigFromSettings maps loaded settings onto a session Config.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	if settings == nil {
		return cfg
	}
	cfg.HalfWindow = settings.Timeline.HalfWindow
	cfg.HitThreshold = settings.Timeline.HitThreshold
	cfg.MinZoom = settings.Viewport.MinZoom
	cfg.MaxZoom = settings.Viewport.MaxZoom
	cfg.PollInterval = settings.Playback.PollInterval
	if mode, err := waveform.ParseMode(settings.Render.Mode); err == nil {
		cfg.Mode = mode
	}
	return cfg
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics attaches session metrics. A nil value disables metrics.
func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClock replaces time.Now for recording timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the event id generator of the session timeline.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		s.idGen = gen
	}
}

// Session is a single take under inspection. Methods are safe for
// concurrent use, but the model is one host loop calling them in sequence
// with only Post arriving from other goroutines.
type Session struct {
	cfg     Config
	capture audiocore.CaptureService
	decoder audiocore.Decoder
	log     logger.Logger
	metrics *metrics.SessionMetrics
	now     func() time.Time
	idGen   func() string

	mu         sync.Mutex
	state      State
	buffer     *audiocore.SampleBuffer
	timeline   *timeline.Timeline
	viewport   viewport.Viewport
	playhead   float64
	playing    bool
	trim       waveform.Trim
	mode       waveform.Mode
	activeKeys map[string]struct{}
	recStart   time.Time
	revision   uint64
	frames     *cache.Cache
	playback   *playbackLoop

	inboxMu sync.Mutex
	inbox   []Msg
	notify  chan struct{}
}

// New returns an idle session. capture may be nil for sessions that only
// import audio.
func New(cfg Config, capture audiocore.CaptureService, decoder audiocore.Decoder, opts ...Option) *Session {
	s := &Session{
		cfg:        cfg,
		capture:    capture,
		decoder:    decoder,
		log:        logger.Global().Module(componentSession),
		now:        time.Now,
		mode:       cfg.Mode,
		activeKeys: make(map[string]struct{}),
		// no janitor goroutine; expired frames are purged on render misses
		frames: cache.New(frameCacheTTL, 0),
		notify: make(chan struct{}, 1),
	}
	if s.mode == "" {
		s.mode = waveform.ModeWaveform
	}
	for _, opt := range opts {
		opt(s)
	}

	s.timeline = timeline.New(s.timelineOptions()...)
	s.viewport = s.newViewport(0)
	return s
}

func (s *Session) newViewport(duration float64) viewport.Viewport {
	vp := viewport.New(duration)
	if s.cfg.MaxZoom > 0 {
		vp = vp.WithBounds(s.cfg.MinZoom, s.cfg.MaxZoom)
	}
	return vp
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Buffer returns the current sample buffer, or nil.
func (s *Session) Buffer() *audiocore.SampleBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// Events returns a copy of the timeline events.
func (s *Session) Events() []timeline.KeyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Events()
}

// Selected returns the selected events in timeline order.
func (s *Session) Selected() []timeline.KeyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Selected()
}

// Elapsed returns the time since the current recording started, or zero
// when not recording. Hosts use it to timestamp KeyDown messages.
func (s *Session) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return 0
	}
	return s.now().Sub(s.recStart).Seconds()
}

// StartRecording begins a new take. Any previous buffer and timeline are
// discarded. A capture failure leaves the session unchanged.
func (s *Session) StartRecording(ctx context.Context) error {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !CanTransition(s.state, StateRecording) {
		return s.transition(StateRecording)
	}
	if s.capture == nil {
		return s.fail(metrics.OpRecord, errors.Newf("no capture service configured").
			Component(componentSession).
			Category(errors.CategoryCaptureUnavailable).
			Build())
	}

	if _, err := s.capture.Start(ctx); err != nil {
		return s.fail(metrics.OpRecord, err)
	}

	s.clearInbox()
	s.timeline.Reset()
	s.buffer = nil
	s.viewport = s.newViewport(0)
	s.trim = waveform.Trim{}
	s.playhead = 0
	clear(s.activeKeys)
	s.recStart = s.now()
	s.touch()
	s.metrics.SetSelected(0)
	s.metrics.SetBufferDuration(0)

	return s.transition(StateRecording)
}

// StopRecording finalizes the take, decodes it and clamps the timeline.
// Calling it when no take is in progress is a no-op. When decoding fails
// the session returns to Idle with an empty timeline.
func (s *Session) StopRecording(ctx context.Context) error {
	// key presses posted before the stop belong to this take
	s.Drain()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil
	}
	if err := s.transition(StateProcessing); err != nil {
		return err
	}

	start := s.now()
	rec, err := s.capture.Stop()
	if err == nil {
		var buf *audiocore.SampleBuffer
		buf, err = s.decoder.Decode(ctx, rec.Data, rec.MimeHint)
		if err == nil {
			s.metrics.RecordDuration(metrics.OpRecord, s.now().Sub(start).Seconds())
			s.metrics.RecordOperation(metrics.OpRecord, metrics.StatusSuccess)
			return s.finalize(buf)
		}
	}

	s.timeline.Reset()
	s.buffer = nil
	s.touch()
	_ = s.transition(StateIdle)
	return s.fail(metrics.OpRecord, err)
}

// Import decodes audio bytes into a fresh take with an empty timeline.
func (s *Session) Import(ctx context.Context, data []byte, mimeHint string) error {
	return s.ImportWithEvents(ctx, data, mimeHint, nil)
}

// ImportWithEvents decodes audio bytes and loads previously recorded key
// presses into a fresh timeline. On any failure the buffer, timeline and
// state are left as they were.
func (s *Session) ImportWithEvents(ctx context.Context, data []byte, mimeHint string, records []timeline.Record) error {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if prev == StateRecording {
		return errors.Newf("cannot import while recording").
			Component(componentSession).
			Category(errors.CategoryState).
			Context("operation", metrics.OpImport).
			Build()
	}
	if err := s.transition(StateProcessing); err != nil {
		return err
	}

	start := s.now()
	buf, err := s.decoder.Decode(ctx, data, mimeHint)
	if err != nil {
		s.state = prev
		return s.fail(metrics.OpImport, err)
	}

	tl := timeline.New(s.timelineOptions()...)
	if err := tl.AppendRecords(records); err != nil {
		s.state = prev
		return s.fail(metrics.OpImport, err)
	}

	s.timeline = tl
	s.metrics.RecordDuration(metrics.OpImport, s.now().Sub(start).Seconds())
	s.metrics.RecordOperation(metrics.OpImport, metrics.StatusSuccess)
	if err := s.finalize(buf); err != nil {
		return err
	}
	// only presses that survived the clamp are counted
	events := s.timeline.Events()
	for i := range events {
		s.metrics.RecordEvent(string(events[i].Group))
	}
	return nil
}

func (s *Session) timelineOptions() []timeline.Option {
	opts := []timeline.Option{
		timeline.WithHalfWindow(s.cfg.HalfWindow),
		timeline.WithHitThreshold(s.cfg.HitThreshold),
	}
	if s.idGen != nil {
		opts = append(opts, timeline.WithIDGenerator(s.idGen))
	}
	return opts
}

// finalize installs buf, clamps the timeline to it and enters Ready.
func (s *Session) finalize(buf *audiocore.SampleBuffer) error {
	s.buffer = buf
	_, dropped := s.timeline.Clamp(buf.Duration())
	if dropped > 0 {
		s.log.Warn("dropped key events past the end of audio",
			logger.Int("dropped", dropped),
			logger.Float64("duration", buf.Duration()))
	}

	s.viewport = s.newViewport(buf.Duration())
	s.trim = waveform.Trim{}
	s.playhead = 0
	s.touch()

	s.metrics.SetBufferDuration(buf.Duration())
	s.metrics.SetSelected(s.timeline.SelectedCount())

	s.log.Info("take ready",
		logger.Float64("duration", buf.Duration()),
		logger.Int("sample_rate", buf.SampleRate()),
		logger.Int("events", s.timeline.Len()))

	return s.transition(StateReady)
}

// fail logs err once at the session boundary and records it.
func (s *Session) fail(operation string, err error) error {
	category := errors.CategoryOf(err)
	s.metrics.RecordError(operation, string(category))
	s.log.Error("operation failed",
		logger.String("operation", operation),
		logger.String("category", string(category)),
		logger.Error(err))
	return err
}

// touch invalidates cached frames.
func (s *Session) touch() {
	s.revision++
}

// Close stops playback and abandons a take in progress.
func (s *Session) Close() {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		if _, err := s.capture.Stop(); err != nil {
			s.log.Warn("failed to stop capture on close", logger.Error(err))
		}
		s.timeline.Reset()
		s.state = StateIdle
	}
	s.frames.Flush()
}
