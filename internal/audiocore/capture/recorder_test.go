package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/errors"
)

// fakeBackend hands the data callback to the test so it can play the audio thread.
type fakeBackend struct {
	mu       sync.Mutex
	onData   func([]byte)
	openErr  error
	startErr error
	device   *fakeDevice
}

type fakeDevice struct {
	startErr error
	started  bool
	stopped  bool
	closed   bool
}

func (d *fakeDevice) Start() error {
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	return nil
}

func (d *fakeDevice) Stop() error {
	d.stopped = true
	return nil
}

func (d *fakeDevice) Close() { d.closed = true }

func (b *fakeBackend) Open(_ Config, onData func([]byte)) (Device, DeviceInfo, error) {
	if b.openErr != nil {
		return nil, DeviceInfo{}, b.openErr
	}
	b.mu.Lock()
	b.onData = onData
	b.device = &fakeDevice{startErr: b.startErr}
	b.mu.Unlock()
	return b.device, DeviceInfo{Name: "fake"}, nil
}

func (b *fakeBackend) feed(samples ...int16) {
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	b.mu.Lock()
	onData := b.onData
	b.mu.Unlock()
	onData(pcm)
}

func newTestRecorder(b Backend) *Recorder {
	return NewRecorder(Config{SampleRate: 8000, PumpInterval: time.Millisecond}, b, nil)
}

func TestRecorderCapturesTake(t *testing.T) {
	backend := &fakeBackend{}
	rec := newTestRecorder(backend)

	chunks, err := rec.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Recording())
	assert.True(t, backend.device.started)

	backend.feed(100, -100, 32767)
	backend.feed(-32768, 0)

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.False(t, rec.Recording())
	assert.True(t, backend.device.stopped)
	assert.True(t, backend.device.closed)
	assert.Equal(t, audiocore.MimeWAV, recording.MimeHint)

	// chunk channel is closed after Stop
	var streamed []byte
	for c := range chunks {
		streamed = append(streamed, c...)
	}
	assert.Len(t, streamed, 10)

	dec := wav.NewDecoder(bytes.NewReader(recording.Data))
	require.True(t, dec.IsValidFile())
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 8000, int(dec.SampleRate))
	assert.Equal(t, []int{100, -100, 32767, -32768, 0}, pcm.Data)
}

func TestRecorderStopWhenIdle(t *testing.T) {
	rec := newTestRecorder(&fakeBackend{})

	_, err := rec.Stop()
	require.Error(t, err)
	assert.ErrorIs(t, err, audiocore.ErrNotRecording)
}

func TestRecorderStopTwice(t *testing.T) {
	rec := newTestRecorder(&fakeBackend{})
	_, err := rec.Start(context.Background())
	require.NoError(t, err)

	_, err = rec.Stop()
	require.NoError(t, err)
	_, err = rec.Stop()
	assert.ErrorIs(t, err, audiocore.ErrNotRecording)
}

func TestRecorderStartTwice(t *testing.T) {
	rec := newTestRecorder(&fakeBackend{})
	_, err := rec.Start(context.Background())
	require.NoError(t, err)
	defer func() { _, _ = rec.Stop() }()

	_, err = rec.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestRecorderUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"open fails", &fakeBackend{openErr: fmt.Errorf("no such device")}},
		{"start fails", &fakeBackend{startErr: fmt.Errorf("device busy")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestRecorder(tt.backend)
			_, err := rec.Start(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, audiocore.ErrCaptureUnavailable)
			assert.False(t, rec.Recording())
			if tt.backend.device != nil {
				assert.True(t, tt.backend.device.closed)
			}
		})
	}
}

func TestRecorderEmptyTake(t *testing.T) {
	rec := newTestRecorder(&fakeBackend{})
	_, err := rec.Start(context.Background())
	require.NoError(t, err)

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.Len(t, recording.Data, 44)
}

func TestRecorderContextCancelClosesChunks(t *testing.T) {
	backend := &fakeBackend{}
	rec := newTestRecorder(backend)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := rec.Start(ctx)
	require.NoError(t, err)

	backend.feed(1, 2, 3)
	cancel()

	// pump closes the channel on cancellation
	for range chunks {
	}
	assert.True(t, rec.Recording())

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.Len(t, recording.Data, 44+6)
}

func TestRecorderKeepsTakeAfterContextCancel(t *testing.T) {
	backend := &fakeBackend{}
	rec := newTestRecorder(backend)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := rec.Start(ctx)
	require.NoError(t, err)

	backend.feed(1, 2)
	cancel()
	for range chunks {
	}

	// the device is still running until Stop
	backend.feed(3, 4, 5)

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.Zero(t, rec.Dropped())

	dec := wav.NewDecoder(bytes.NewReader(recording.Data))
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pcm.Data)
}

func TestRecorderLevel(t *testing.T) {
	backend := &fakeBackend{}
	rec := newTestRecorder(backend)
	_, err := rec.Start(context.Background())
	require.NoError(t, err)

	backend.feed(32767, -32768, 32767, -32768)
	assert.Equal(t, 100, rec.Level())

	_, err = rec.Stop()
	require.NoError(t, err)
}

func TestRecorderCountsOverflow(t *testing.T) {
	backend := &fakeBackend{}
	// 1 Hz ring holds 4 bytes, and a slow pump never drains in time
	rec := NewRecorder(Config{SampleRate: 1, PumpInterval: time.Hour}, backend, nil)
	_, err := rec.Start(context.Background())
	require.NoError(t, err)

	backend.feed(1, 2, 3, 4)
	assert.Equal(t, int64(4), rec.Dropped())

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.Len(t, recording.Data, 44+4)
}
