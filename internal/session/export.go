package session

import (
	"context"
	"io"

	"github.com/tphakala/keyclip/internal/audiocore/export"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability/metrics"
)

// Export writes one WAV segment per selected event, plus metadata, to sink.
// With nothing selected it returns an empty-selection error and the sink is
// never called.
func (s *Session) Export(ctx context.Context, sink export.Sink) (*export.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuffer(metrics.OpExport); err != nil {
		return nil, err
	}

	start := s.now()
	bundle, err := export.ExportSegments(ctx, s.buffer, s.timeline.Selected(), sink)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryEmptySelection) {
			// user-correctable, not a fault
			s.metrics.RecordError(metrics.OpExport, string(errors.CategoryEmptySelection))
			s.log.Info("export skipped, no events selected")
			return nil, err
		}
		return nil, s.fail(metrics.OpExport, err)
	}

	var size int
	for i := range bundle.Files {
		size += len(bundle.Files[i].Data)
	}
	s.metrics.RecordDuration(metrics.OpExport, s.now().Sub(start).Seconds())
	s.metrics.RecordOperation(metrics.OpExport, metrics.StatusSuccess)
	s.metrics.RecordExport(len(bundle.Files), size)
	s.log.Info("segments exported",
		logger.Int("segments", len(bundle.Files)),
		logger.Int("bytes", size))

	return bundle, nil
}

// ExportTrimmed encodes the audio between the trim markers as WAV. Both
// markers must be set.
func (s *Session) ExportTrimmed() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuffer(metrics.OpExportTrimmed); err != nil {
		return nil, err
	}
	start, end, ok := s.trim.Range()
	if !ok {
		return nil, s.fail(metrics.OpExportTrimmed, errors.Newf("trim range is not set").
			Component(componentSession).
			Category(errors.CategoryValidation).
			Context("has_start", s.trim.HasStart).
			Context("has_end", s.trim.HasEnd).
			Build())
	}

	data, err := export.Encode(export.ExtractRange(s.buffer, start, end))
	if err != nil {
		return nil, s.fail(metrics.OpExportTrimmed, err)
	}
	s.metrics.RecordOperation(metrics.OpExportTrimmed, metrics.StatusSuccess)
	s.log.Info("trimmed range exported",
		logger.Float64("start", start),
		logger.Float64("end", end),
		logger.Int("bytes", len(data)))
	return data, nil
}

// EncodeTake returns the whole buffer as 16-bit PCM WAV.
func (s *Session) EncodeTake() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuffer(metrics.OpExport); err != nil {
		return nil, err
	}
	return export.Encode(s.buffer)
}

// WriteEvents writes the timeline as an events document.
func (s *Session) WriteEvents(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.WriteRecords(w)
}

func (s *Session) requireBuffer(operation string) error {
	if s.state == StateReady && s.buffer != nil {
		return nil
	}
	return s.fail(operation, errors.Newf("no audio loaded").
		Component(componentSession).
		Category(errors.CategoryState).
		Context("operation", operation).
		Context("state", s.state.String()).
		Build())
}
