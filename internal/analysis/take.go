// Package analysis runs the keyclip commands: recording a take, and loading
// a saved take for inspection, rendering and export.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tphakala/keyclip/internal/audiocore/decode"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability/metrics"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/timeline"
)

const componentAnalysis = "analysis"

// Take names the files of a saved take.
type Take struct {
	Audio  string // audio file, format detected from the extension
	Events string // events document, optional
}

// ResolveTake returns the take for an audio file. Without an explicit events
// path, an events.json next to the audio is used when present.
func ResolveTake(audio, events string) Take {
	if events == "" {
		sibling := filepath.Join(filepath.Dir(audio), TakeEventsFile)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			events = sibling
		}
	}
	return Take{Audio: audio, Events: events}
}

// newDecoder returns the decode service configured by settings.
func newDecoder(settings *conf.Settings, log logger.Logger) *decode.Service {
	return decode.NewService(decode.Config{
		FfmpegPath: settings.Decode.FfmpegPath,
		SampleRate: settings.Decode.SampleRate,
	}, log)
}

// LoadTake decodes a saved take into a ready session. The returned session
// must be closed by the caller.
func LoadTake(ctx context.Context, settings *conf.Settings, take Take, m *metrics.SessionMetrics) (*session.Session, error) {
	log := logger.Global().Module(componentAnalysis)

	if err := validateAudioFile(take.Audio); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(take.Audio)
	if err != nil {
		return nil, fileError(err, take.Audio)
	}

	records, err := readEvents(take.Events)
	if err != nil {
		return nil, err
	}

	s := session.New(session.ConfigFromSettings(settings), nil, newDecoder(settings, log), session.WithMetrics(m))

	if err := s.ImportWithEvents(ctx, data, decode.HintFromPath(take.Audio), records); err != nil {
		s.Close()
		return nil, err
	}

	log.Debug("take loaded",
		logger.String("audio", filepath.Base(take.Audio)),
		logger.Int("events", len(records)))
	return s, nil
}

// validateAudioFile checks that path names a non-empty regular file.
func validateAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fileError(err, path)
	}
	if info.IsDir() {
		return errors.Newf("%s is a directory, not an audio file", filepath.Base(path)).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Context("path", path).
			Build()
	}
	if info.Size() == 0 {
		return errors.Newf("audio file %s is empty", filepath.Base(path)).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			FileContext(path, 0).
			Build()
	}
	return nil
}

func readEvents(path string) ([]timeline.Record, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(err, path)
	}
	defer f.Close()

	records, err := timeline.ReadRecords(f)
	if err != nil {
		return nil, errors.New(err).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Context("path", path).
			Build()
	}
	return records, nil
}

func fileError(err error, path string) error {
	return errors.New(fmt.Errorf("%s: %w", filepath.Base(path), err)).
		Component(componentAnalysis).
		Category(errors.CategoryFileIO).
		Context("path", path).
		Build()
}
