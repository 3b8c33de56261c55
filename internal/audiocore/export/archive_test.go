package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/timeline"
)

func recordedTimeline(t *testing.T, duration float64, presses ...timeline.Record) *timeline.Timeline {
	t.Helper()
	tl := timeline.New()
	require.NoError(t, tl.AppendRecords(presses))
	tl.Clamp(duration)
	tl.SelectAll()
	return tl
}

func TestSegmentFilename(t *testing.T) {
	assert.Equal(t, "keypress_a_1.200s.wav", SegmentFilename("a", 1.2))
	assert.Equal(t, "keypress_Space_0.000s.wav", SegmentFilename("Space", 0))
	assert.Equal(t, "keypress___2.346s.wav", SegmentFilename("/", 2.3456))
	assert.Equal(t, "keypress___________9.000s.wav", SegmentFilename(`/\:*?"<>|`, 9))
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "a.wav", uniqueName("a.wav", used))
	assert.Equal(t, "a_2.wav", uniqueName("a.wav", used))
	assert.Equal(t, "a_3.wav", uniqueName("a.wav", used))
	assert.Equal(t, "noext", uniqueName("noext", used))
	assert.Equal(t, "noext_2", uniqueName("noext", used))
}

func TestExportSegmentsWritesBundle(t *testing.T) {
	buf := newBuffer(t, ramp(48000), 16000)
	tl := recordedTimeline(t, buf.Duration(),
		timeline.Record{KeyLabel: "a", KeyCode: "KeyA", EventTime: 1.2},
		timeline.Record{KeyLabel: " ", KeyCode: "Space", EventTime: 2.8},
	)

	sink := &MemorySink{}
	bundle, err := ExportSegments(context.Background(), buf, tl.Selected(), sink)
	require.NoError(t, err)
	require.Len(t, sink.Bundles(), 1)
	assert.Same(t, bundle, sink.Bundles()[0])

	require.Len(t, bundle.Files, 2)
	assert.Equal(t, "keypress_a_1.200s.wav", bundle.Files[0].Name)
	assert.Equal(t, "keypress_Space_2.800s.wav", bundle.Files[1].Name)
	assert.Len(t, bundle.Files[0].Data, WAVHeaderSize+2*16000)

	meta := bundle.Metadata[1]
	assert.Equal(t, "keypress_Space_2.800s.wav", meta.Filename)
	assert.Equal(t, " ", meta.KeyLabel)
	assert.Equal(t, "Space", meta.KeyCode)
	assert.InDelta(t, 2.3, meta.WindowStart, 1e-9)
	assert.InDelta(t, 3.0, meta.WindowEnd, 1e-9)
	assert.InDelta(t, 0.7, meta.DurationSeconds, 1e-9)
}

func TestExportSegmentsDeduplicatesNames(t *testing.T) {
	buf := newBuffer(t, ramp(1000), 1000)
	tl := recordedTimeline(t, buf.Duration(),
		timeline.Record{KeyLabel: "a", KeyCode: "KeyA", EventTime: 0.5},
		timeline.Record{KeyLabel: "a", KeyCode: "KeyA", EventTime: 0.5},
	)

	bundle, err := BuildBundle(context.Background(), buf, tl.Selected())
	require.NoError(t, err)
	assert.Equal(t, "keypress_a_0.500s.wav", bundle.Files[0].Name)
	assert.Equal(t, "keypress_a_0.500s_2.wav", bundle.Files[1].Name)
	assert.Equal(t, bundle.Files[1].Name, bundle.Metadata[1].Filename)
}

func TestExportFilenamesUseKeyLabel(t *testing.T) {
	buf := newBuffer(t, ramp(3000), 1000)
	tl := recordedTimeline(t, buf.Duration(),
		timeline.Record{KeyLabel: "_", KeyCode: "Minus", EventTime: 1.0},
		timeline.Record{KeyLabel: "ArrowUp", KeyCode: "ArrowUp", EventTime: 1.5},
		timeline.Record{KeyLabel: "-", KeyCode: "Minus", EventTime: 2.0},
		timeline.Record{KeyLabel: "Shift", KeyCode: "ShiftLeft", EventTime: 2.5},
	)

	bundle, err := BuildBundle(context.Background(), buf, tl.Selected())
	require.NoError(t, err)

	names := make([]string, 0, len(bundle.Files))
	for _, f := range bundle.Files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"keypress___1.000s.wav",
		"keypress_ArrowUp_1.500s.wav",
		"keypress_-_2.000s.wav",
		"keypress_Shift_2.500s.wav",
	}, names, "shifted and named keys keep the label that was pressed")
	assert.Equal(t, "_", bundle.Metadata[0].KeyLabel)
}

func TestMetadataJSONRejectsNonFiniteValues(t *testing.T) {
	bundle := &Bundle{Metadata: []Metadata{{Filename: "a.wav", EventTime: math.NaN()}}}

	_, err := bundle.MetadataJSON()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestExportNothingSelected(t *testing.T) {
	buf := newBuffer(t, ramp(1000), 1000)
	sink := &MemorySink{}

	bundle, err := ExportSegments(context.Background(), buf, nil, sink)
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, audiocore.ErrEmptySelection)
	assert.Empty(t, sink.Bundles())
}

func TestExportCanceled(t *testing.T) {
	buf := newBuffer(t, ramp(1000), 1000)
	tl := recordedTimeline(t, buf.Duration(), timeline.Record{KeyLabel: "a", KeyCode: "KeyA", EventTime: 0.5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExportSegments(ctx, buf, tl.Selected(), &MemorySink{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestZipSinkLayout(t *testing.T) {
	buf := newBuffer(t, ramp(16000), 16000)
	tl := recordedTimeline(t, buf.Duration(),
		timeline.Record{KeyLabel: "x", KeyCode: "KeyX", EventTime: 0.25},
		timeline.Record{KeyLabel: "y", KeyCode: "KeyY", EventTime: 0.75},
	)

	var out bytes.Buffer
	_, err := ExportSegments(context.Background(), buf, tl.Selected(), &ZipSink{W: &out})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"keypress_x_0.250s.wav", "keypress_y_0.750s.wav", MetadataFileName}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)

	var meta []Metadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	require.Len(t, meta, 2)
	assert.Equal(t, "KeyY", meta[1].KeyCode)
	assert.InDelta(t, 0.25, meta[1].WindowStart, 1e-9)
	assert.InDelta(t, 1.0, meta[1].WindowEnd, 1e-9)
	assert.Contains(t, string(raw), `"durationSeconds"`)
}

func TestFileSinkCreatesArchiveOnWrite(t *testing.T) {
	buf := newBuffer(t, ramp(16000), 16000)
	tl := recordedTimeline(t, buf.Duration(),
		timeline.Record{KeyLabel: "x", KeyCode: "KeyX", EventTime: 0.5},
	)
	path := filepath.Join(t.TempDir(), "segments.zip")
	sink := &FileSink{Path: path}

	_, err := ExportSegments(context.Background(), buf, nil, sink)
	require.Error(t, err)
	assert.NoFileExists(t, path, "nothing selected, nothing written")

	_, err = ExportSegments(context.Background(), buf, tl.Selected(), sink)
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)
}

func TestFileSinkBadPath(t *testing.T) {
	sink := &FileSink{Path: filepath.Join(t.TempDir(), "missing", "out.zip")}
	err := sink.Write(context.Background(), &Bundle{})
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
