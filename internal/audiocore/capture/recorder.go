// Package capture records mono 16-bit PCM from a microphone and finalizes it
// into WAV bytes.
//
// The device callback only writes into a ring buffer. A pump goroutine drains
// the ring, accumulates the take and forwards chunks to the caller.
package capture

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/audiocore/export"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
)

const componentCapture = "capture"

const (
	defaultSampleRate   = 48000
	defaultPumpInterval = 10 * time.Millisecond
	chunkQueueSize      = 64
	ringSeconds         = 2
	bytesPerSample      = 2
)

// Config configures a Recorder.
type Config struct {
	SampleRate   int
	Device       string // device name; empty selects the system default
	BufferFrames int    // device period size; 0 uses the backend default
	PumpInterval time.Duration
}

// Recorder implements audiocore.CaptureService.
type Recorder struct {
	config  Config
	backend Backend
	log     logger.Logger

	mu        sync.Mutex
	recording bool
	device    Device
	ring      *ringbuffer.RingBuffer
	pcm       []byte
	chunks    chan []byte
	quit      chan struct{}
	done      chan struct{}

	level   atomic.Int32
	dropped atomic.Int64
}

var _ audiocore.CaptureService = (*Recorder)(nil)

// NewRecorder returns a recorder on the given backend. A nil logger uses the
// global logger.
func NewRecorder(config Config, backend Backend, log logger.Logger) *Recorder {
	if config.SampleRate <= 0 {
		config.SampleRate = defaultSampleRate
	}
	if config.PumpInterval <= 0 {
		config.PumpInterval = defaultPumpInterval
	}
	if log == nil {
		log = logger.Global().Module(componentCapture)
	}
	return &Recorder{config: config, backend: backend, log: log}
}

// Start opens the capture device and begins recording. The returned channel
// carries raw S16LE chunks and is closed by Stop. Chunks are dropped when the
// consumer falls behind; the finalized recording is unaffected.
func (r *Recorder) Start(ctx context.Context) (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return nil, errors.Newf("capture already running").
			Component(componentCapture).
			Category(errors.CategoryState).
			Build()
	}

	ring := ringbuffer.New(r.config.SampleRate * bytesPerSample * ringSeconds)
	r.dropped.Store(0)
	r.level.Store(0)

	device, info, err := r.backend.Open(r.config, func(pcm []byte) {
		r.write(ring, pcm)
	})
	if err != nil {
		return nil, r.unavailable(err, "open_device")
	}

	if err := device.Start(); err != nil {
		device.Close()
		return nil, r.unavailable(err, "start_device")
	}

	r.recording = true
	r.device = device
	r.ring = ring
	r.pcm = r.pcm[:0]
	r.chunks = make(chan []byte, chunkQueueSize)
	r.quit = make(chan struct{})
	r.done = make(chan struct{})

	go r.pump(ctx, ring, r.chunks, r.quit, r.done)

	r.log.Info("capture started",
		logger.String("device", info.Name),
		logger.Int("sample_rate", r.config.SampleRate))

	return r.chunks, nil
}

// Stop ends recording and returns the take as WAV bytes. Stopping an idle
// recorder returns audiocore.ErrNotRecording.
func (r *Recorder) Stop() (audiocore.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return audiocore.Recording{}, audiocore.ErrNotRecording
	}
	r.recording = false

	if err := r.device.Stop(); err != nil {
		r.log.Warn("failed to stop capture device", logger.Error(err))
	}
	r.device.Close()
	r.device = nil

	close(r.quit)
	<-r.done

	samples := make([]int, len(r.pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(r.pcm[i*bytesPerSample:])))
	}

	data, err := export.EncodePCM16(samples, r.config.SampleRate)
	if err != nil {
		return audiocore.Recording{}, errors.New(err).
			Component(componentCapture).
			Category(errors.CategoryAudio).
			Context("operation", "finalize_recording").
			Build()
	}

	if dropped := r.dropped.Load(); dropped > 0 {
		r.log.Warn("capture ring overflowed", logger.Int64("dropped_bytes", dropped))
	}
	r.log.Info("capture stopped",
		logger.Int("samples", len(samples)),
		logger.Duration("length", time.Duration(len(samples))*time.Second/time.Duration(r.config.SampleRate)))

	return audiocore.Recording{Data: data, MimeHint: audiocore.MimeWAV}, nil
}

// Recording reports whether a take is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Level returns the most recent input level on a 0-100 scale.
func (r *Recorder) Level() int {
	return int(r.level.Load())
}

// Dropped returns the number of bytes lost to ring overflow in this take.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// write runs on the audio thread.
func (r *Recorder) write(ring *ringbuffer.RingBuffer, pcm []byte) {
	r.level.Store(int32(calculateAudioLevel(pcm).Level))

	n, err := ring.Write(pcm)
	if err != nil {
		r.dropped.Add(int64(len(pcm) - n))
	}
}

// pump drains the ring until quit is closed, then performs a final drain so
// no captured bytes are lost. When ctx is done the chunk stream is closed but
// the device keeps filling the ring, so the take is accumulated until Stop.
func (r *Recorder) pump(ctx context.Context, ring *ringbuffer.RingBuffer, chunks chan<- []byte, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.config.PumpInterval)
	defer ticker.Stop()

	cancelled := ctx.Done()
	for {
		select {
		case <-quit:
			r.drain(ring, chunks)
			if chunks != nil {
				close(chunks)
			}
			return
		case <-cancelled:
			r.drain(ring, chunks)
			close(chunks)
			chunks, cancelled = nil, nil
			r.log.Debug("capture stream closed, take continues until stop")
		case <-ticker.C:
			r.drain(ring, chunks)
		}
	}
}

func (r *Recorder) drain(ring *ringbuffer.RingBuffer, chunks chan<- []byte) {
	available := ring.Length()
	if available == 0 {
		return
	}

	chunk := make([]byte, available)
	n, err := ring.Read(chunk)
	if err != nil && n == 0 {
		return
	}
	chunk = chunk[:n]
	r.pcm = append(r.pcm, chunk...)

	// a nil chunks channel never accepts, the take still grows
	select {
	case chunks <- chunk:
	default:
	}
}

func (r *Recorder) unavailable(err error, operation string) error {
	return errors.New(err).
		Component(componentCapture).
		Category(errors.CategoryCaptureUnavailable).
		Context("operation", operation).
		Context("device", r.config.Device).
		Build()
}
