package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/timeline"
)

// MetadataFileName is the name of the JSON document written next to the segments.
const MetadataFileName = "metadata.json"

// Metadata describes one exported segment.
type Metadata struct {
	Filename        string  `json:"filename"`
	KeyLabel        string  `json:"keyLabel"`
	KeyCode         string  `json:"keyCode"`
	EventTime       float64 `json:"eventTime"`
	WindowStart     float64 `json:"windowStart"`
	WindowEnd       float64 `json:"windowEnd"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// File is one named entry in a bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle is everything handed to a sink in one export.
type Bundle struct {
	Files    []File
	Metadata []Metadata
}

// MetadataJSON renders the bundle metadata as a single JSON document.
func (b *Bundle) MetadataJSON() ([]byte, error) {
	data, err := json.MarshalIndent(b.Metadata, "", "  ")
	if err != nil {
		return nil, errors.New(fmt.Errorf("marshal export metadata: %w", err)).
			Component("export").
			Category(errors.CategoryValidation).
			Build()
	}
	return data, nil
}

// Sink receives a finished bundle.
type Sink interface {
	Write(ctx context.Context, bundle *Bundle) error
}

// ZipSink writes bundles as zip archives to W.
type ZipSink struct {
	W io.Writer
}

// Write stores every file followed by metadata.json.
func (z *ZipSink) Write(ctx context.Context, bundle *Bundle) error {
	meta, err := bundle.MetadataJSON()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(z.W)
	entries := append(bundle.Files[:len(bundle.Files):len(bundle.Files)], File{Name: MetadataFileName, Data: meta})
	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return errors.New(err).
				Component("export").
				Category(errors.CategoryCancellation).
				Context("operation", "write_zip").
				Build()
		}

		w, err := zw.Create(f.Name)
		if err == nil {
			_, err = w.Write(f.Data)
		}
		if err != nil {
			_ = zw.Close()
			return errors.New(err).
				Component("export").
				Category(errors.CategoryFileIO).
				Context("operation", "write_zip_entry").
				Context("entry", f.Name).
				Build()
		}
	}

	if err := zw.Close(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "close_zip").
			Build()
	}
	return nil
}

// FileSink writes each bundle as a zip archive at Path. The file is only
// created once a bundle arrives, and is removed again if writing fails.
type FileSink struct {
	Path string
}

// Write creates Path and stores the bundle in it.
func (s *FileSink) Write(ctx context.Context, bundle *Bundle) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			FileContext(s.Path, 0).
			Build()
	}

	err = (&ZipSink{W: f}).Write(ctx, bundle)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.New(closeErr).
			Component("export").
			Category(errors.CategoryFileIO).
			FileContext(s.Path, 0).
			Build()
	}
	if err != nil {
		_ = os.Remove(s.Path)
		return err
	}
	return nil
}

// MemorySink keeps bundles in memory.
type MemorySink struct {
	mu      sync.Mutex
	bundles []*Bundle
}

// Write records the bundle.
func (m *MemorySink) Write(_ context.Context, bundle *Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles = append(m.bundles, bundle)
	return nil
}

// Bundles returns the bundles written so far.
func (m *MemorySink) Bundles() []*Bundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Bundle, len(m.bundles))
	copy(out, m.bundles)
	return out
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// SegmentFilename returns keypress_<label>_<time>s.wav with path-illegal
// characters in label replaced by underscores.
func SegmentFilename(label string, eventTime float64) string {
	return fmt.Sprintf("keypress_%s_%.3fs.wav", filenameReplacer.Replace(label), eventTime)
}

// uniqueName appends _2, _3, ... before the extension until name is unused.
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}

	base, ext := name, ""
	if dot := strings.LastIndex(name, "."); dot > 0 {
		base, ext = name[:dot], name[dot:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// BuildBundle extracts and encodes one segment per event. It fails with an
// empty-selection error when events is empty.
func BuildBundle(ctx context.Context, buf *audiocore.SampleBuffer, events []timeline.KeyEvent) (*Bundle, error) {
	if len(events) == 0 {
		return nil, errors.Newf("no events selected for export").
			Component("export").
			Category(errors.CategoryEmptySelection).
			Context("operation", "export_segments").
			Build()
	}

	bundle := &Bundle{
		Files:    make([]File, 0, len(events)),
		Metadata: make([]Metadata, 0, len(events)),
	}
	used := make(map[string]bool, len(events))

	for i := range events {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err).
				Component("export").
				Category(errors.CategoryCancellation).
				Context("operation", "export_segments").
				Context("completed", i).
				Build()
		}

		evt := &events[i]
		segment := Extract(buf, evt)
		data, err := Encode(segment)
		if err != nil {
			return nil, err
		}

		name := uniqueName(SegmentFilename(evt.KeyLabel(), evt.Time), used)
		bundle.Files = append(bundle.Files, File{Name: name, Data: data})
		bundle.Metadata = append(bundle.Metadata, Metadata{
			Filename:        name,
			KeyLabel:        evt.Label,
			KeyCode:         evt.Code,
			EventTime:       evt.Time,
			WindowStart:     evt.WindowStart,
			WindowEnd:       evt.WindowEnd,
			DurationSeconds: segment.Duration(),
		})
	}

	return bundle, nil
}

// ExportSegments builds a bundle for events and writes it to sink. Nothing
// reaches the sink when events is empty.
func ExportSegments(ctx context.Context, buf *audiocore.SampleBuffer, events []timeline.KeyEvent, sink Sink) (*Bundle, error) {
	bundle, err := BuildBundle(ctx, buf, events)
	if err != nil {
		return nil, err
	}
	if err := sink.Write(ctx, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}
