package analysis

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/audiocore/export"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/timeline"
	"github.com/tphakala/keyclip/internal/waveform"
)

const testRate = 8000

func testSettings(dir string) *conf.Settings {
	return &conf.Settings{
		Timeline: conf.TimelineSettings{HalfWindow: 0.5, HitThreshold: 0.1},
		Viewport: conf.ViewportSettings{MinZoom: 1, MaxZoom: 20},
		Render:   conf.RenderSettings{Width: 200, Height: 60, Mode: "waveform"},
		Playback: conf.PlaybackSettings{PollInterval: 10 * time.Millisecond},
		Decode:   conf.DecodeSettings{SampleRate: 48000},
		Export:   conf.ExportSettings{Path: filepath.Join(dir, "segments.zip")},
	}
}

// writeFixture writes a take of seconds of tone with key presses a, b, c...
// at the given times.
func writeFixture(t *testing.T, dir string, seconds float64, times ...float64) Take {
	t.Helper()

	samples := make([]int, int(seconds*testRate))
	for i := range samples {
		samples[i] = (i%200 - 100) * 100
	}
	wav, err := export.EncodePCM16(samples, testRate)
	require.NoError(t, err)

	records := make([]timeline.Record, 0, len(times))
	for i, at := range times {
		records = append(records, timeline.Record{
			KeyLabel:  string(rune('a' + i)),
			KeyCode:   "Key" + string(rune('A'+i)),
			EventTime: at,
		})
	}
	events, err := json.Marshal(records)
	require.NoError(t, err)

	take := Take{
		Audio:  filepath.Join(dir, TakeAudioFile),
		Events: filepath.Join(dir, TakeEventsFile),
	}
	require.NoError(t, os.WriteFile(take.Audio, wav, 0o644))
	require.NoError(t, os.WriteFile(take.Events, events, 0o644))
	return take
}

func TestLoadTake(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 3, 1.0, 2.0, 0.5)

	s, err := LoadTake(context.Background(), testSettings(dir), take, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, session.StateReady, s.State())
	assert.InDelta(t, 3.0, s.Buffer().Duration(), 1e-9)

	events := s.Events()
	require.Len(t, events, 3)
	assert.InDelta(t, 0.5, events[0].Time, 1e-9, "events load in time order")
	assert.Equal(t, "KeyC", events[0].Code)
}

func TestLoadTakeWithoutEvents(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 1)
	take.Events = ""

	s, err := LoadTake(context.Background(), testSettings(dir), take, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.Events())
}

func TestLoadTakeErrors(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 1, 0.5)

	empty := filepath.Join(dir, "empty.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	badEvents := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badEvents, []byte("{not json"), 0o644))

	tests := []struct {
		name string
		take Take
		want errors.ErrorCategory
	}{
		{"missing audio", Take{Audio: filepath.Join(dir, "nope.wav")}, errors.CategoryFileIO},
		{"empty audio", Take{Audio: empty}, errors.CategoryValidation},
		{"directory", Take{Audio: dir}, errors.CategoryValidation},
		{"missing events", Take{Audio: take.Audio, Events: filepath.Join(dir, "nope.json")}, errors.CategoryFileIO},
		{"malformed events", Take{Audio: take.Audio, Events: badEvents}, errors.CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadTake(context.Background(), testSettings(dir), tt.take, nil)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.IsCategory(err, tt.want), "got %v", errors.CategoryOf(err))
		})
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 3, 1.0, 2.0)

	var out bytes.Buffer
	err := Inspect(context.Background(), testSettings(dir), &out, take, []float64{1.02, 2.5})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "take.wav: 3.00s at 8000 Hz, 2 key presses")
	assert.Contains(t, text, "click 1.02s: selected a at 1.000s")
	assert.Contains(t, text, "click 2.50s: no key press within 0.10s")
	assert.Contains(t, text, "KeyB")
	assert.Contains(t, text, "0.500-1.500s")
}

func TestInspectNoEvents(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 1)

	var out bytes.Buffer
	require.NoError(t, Inspect(context.Background(), testSettings(dir), &out, take, nil))
	assert.Contains(t, out.String(), "0 key presses")
	assert.NotContains(t, out.String(), "CODE")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 2, 0.5, 1.5)
	output := filepath.Join(dir, "frame.png")

	err := Render(context.Background(), testSettings(dir), take, RenderOptions{
		Output: output,
		Zoom:   2,
		All:    true,
		Trim:   waveform.Trim{Start: 0.2, HasStart: true},
	})
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}

func TestRenderRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 1)
	output := filepath.Join(dir, "frame.png")

	err := Render(context.Background(), testSettings(dir), take, RenderOptions{Output: output, Mode: "sonar"})
	require.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestExportWritesArchive(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 3, 0.5, 1.5, 2.5)
	settings := testSettings(dir)

	bundle, err := Export(context.Background(), settings, take, ExportOptions{Select: []float64{0.5, 2.48}}, nil)
	require.NoError(t, err)
	require.Len(t, bundle.Files, 2)
	assert.Equal(t, "a", bundle.Metadata[0].KeyLabel)
	assert.Equal(t, "c", bundle.Metadata[1].KeyLabel)

	zr, err := zip.OpenReader(settings.Export.Path)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, len(bundle.Files)+1, "segments plus metadata")
}

func TestExportEmptySelection(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 2, 1.0)
	output := filepath.Join(dir, "out.zip")

	bundle, err := Export(context.Background(), testSettings(dir), take, ExportOptions{Output: output}, nil)
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.True(t, errors.IsCategory(err, errors.CategoryEmptySelection))
	assert.NoFileExists(t, output)
}

func TestExportTrimmedRange(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 2, 1.0)
	trimmed := filepath.Join(dir, "trimmed.wav")

	_, err := Export(context.Background(), testSettings(dir), take, ExportOptions{
		All:         true,
		Trim:        waveform.Trim{Start: 1.5, End: 0.5, HasStart: true, HasEnd: true},
		TrimmedPath: trimmed,
	}, nil)
	require.NoError(t, err)

	info, err := os.Stat(trimmed)
	require.NoError(t, err)
	assert.Equal(t, int64(export.WAVHeaderSize+2*testRate), info.Size(), "one second of 16-bit mono")
}

func TestExportTrimmedNeedsBothMarkers(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 2, 1.0)

	_, err := Export(context.Background(), testSettings(dir), take, ExportOptions{
		All:         true,
		Trim:        waveform.Trim{Start: 0.5, HasStart: true},
		TrimmedPath: filepath.Join(dir, "trimmed.wav"),
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestWriteTakeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 2, 0.25, 1.75)
	settings := testSettings(dir)

	s, err := LoadTake(context.Background(), settings, take, nil)
	require.NoError(t, err)
	defer s.Close()

	written, err := writeTake(s, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", TakeAudioFile), written.Audio)

	reloaded, err := LoadTake(context.Background(), settings, written, nil)
	require.NoError(t, err)
	defer reloaded.Close()

	assert.Equal(t, s.Buffer().Len(), reloaded.Buffer().Len())
	require.Len(t, reloaded.Events(), 2)
	assert.InDelta(t, 1.75, reloaded.Events()[1].Time, 1e-9)

	var summary bytes.Buffer
	printSummary(&summary, reloaded, written)
	assert.Contains(t, summary.String(), "Recorded 2.0s with 2 key presses")
}

func TestResolveTake(t *testing.T) {
	dir := t.TempDir()
	take := writeFixture(t, dir, 1, 0.5)

	assert.Equal(t, take, ResolveTake(take.Audio, ""), "sibling events.json is picked up")
	assert.Equal(t, "custom.json", ResolveTake(take.Audio, "custom.json").Events)

	lone := filepath.Join(t.TempDir(), "lone.wav")
	assert.Empty(t, ResolveTake(lone, "").Events)
}
