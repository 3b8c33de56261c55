package analysis

import (
	"context"
	"os"

	"github.com/tphakala/keyclip/internal/audiocore/export"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability/metrics"
	"github.com/tphakala/keyclip/internal/waveform"
)

// ExportOptions controls segment export.
type ExportOptions struct {
	Output      string    // zip archive path, empty uses export.path
	Select      []float64 // click times toggled before exporting
	All         bool
	Trim        waveform.Trim
	TrimmedPath string // when set, the trim range is also written here as WAV
}

// Export loads a take, selects events and writes the selected segments to a
// zip archive. Nothing is written when the selection is empty.
func Export(ctx context.Context, settings *conf.Settings, take Take, opts ExportOptions, m *metrics.SessionMetrics) (*export.Bundle, error) {
	log := logger.Global().Module(componentAnalysis)

	s, err := LoadTake(ctx, settings, take, m)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	selectEvents(s, opts.Select, opts.All)
	if err := applyTrim(s, opts.Trim); err != nil {
		return nil, err
	}

	if opts.TrimmedPath != "" {
		data, err := s.ExportTrimmed()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.TrimmedPath, data, 0o644); err != nil {
			return nil, fileError(err, opts.TrimmedPath)
		}
		log.Info("trimmed range written", logger.String("output", opts.TrimmedPath))
	}

	output := opts.Output
	if output == "" {
		output = settings.Export.Path
	}
	bundle, err := s.Export(ctx, &export.FileSink{Path: output})
	if err != nil {
		return nil, err
	}

	log.Info("archive written",
		logger.String("output", output),
		logger.Int("segments", len(bundle.Files)))
	return bundle, nil
}
