package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tphakala/keyclip/internal/audiocore/capture"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/observability"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/tui"
)

// File names of a take written by Record.
const (
	TakeAudioFile  = "take.wav"
	TakeEventsFile = "events.json"
)

// RecordOptions controls a recording run.
type RecordOptions struct {
	OutputDir string
}

// Record captures a take from the configured microphone while the terminal
// UI turns key presses into timeline events. When the user stops the take,
// the audio and events are written to opts.OutputDir.
func Record(ctx context.Context, settings *conf.Settings, opts RecordOptions) error {
	log := logger.Global().Module(componentAnalysis)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if settings.Metrics.Enabled {
		endpoint := observability.NewEndpoint(settings.Metrics.Listen, m, nil)
		if err := endpoint.Start(ctx); err != nil {
			log.Warn("metrics endpoint unavailable", logger.Error(err))
		} else {
			defer func() {
				cancel()
				endpoint.Wait()
			}()
		}
	}

	recorder := capture.NewRecorder(capture.Config{
		SampleRate:   settings.Audio.SampleRate,
		Device:       settings.Audio.Device,
		BufferFrames: settings.Audio.BufferFrames,
	}, capture.NewMalgoBackend(nil), nil)

	s := session.New(session.ConfigFromSettings(settings), recorder,
		newDecoder(settings, log), session.WithMetrics(m.Session))
	defer s.Close()

	if err := s.StartRecording(ctx); err != nil {
		return err
	}
	log.Info("recording started", logger.String("device", deviceName(settings)))

	model := tui.New(tui.Config{
		Session: s,
		Levels:  recorder,
		Metrics: m.Session,
		Device:  deviceName(settings),
	})
	_, uiErr := tea.NewProgram(model, tea.WithContext(ctx)).Run()

	// the take is finalized even when the UI failed or a signal arrived
	if err := s.StopRecording(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if uiErr != nil {
		log.Warn("terminal UI exited with error", logger.Error(uiErr))
	}

	paths, err := writeTake(s, opts.OutputDir)
	if err != nil {
		return err
	}
	if dropped := recorder.Dropped(); dropped > 0 {
		log.Warn("capture chunks dropped", logger.Int64("dropped", dropped))
	}

	printSummary(os.Stdout, s, paths)
	return nil
}

func deviceName(settings *conf.Settings) string {
	if settings.Audio.Device == "" {
		return "default device"
	}
	return settings.Audio.Device
}

// writeTake writes the session's take as WAV plus its events document and
// returns both paths.
func writeTake(s *session.Session, dir string) (Take, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Take{}, fileError(err, dir)
	}
	take := Take{
		Audio:  filepath.Join(dir, TakeAudioFile),
		Events: filepath.Join(dir, TakeEventsFile),
	}

	wav, err := s.EncodeTake()
	if err != nil {
		return Take{}, err
	}
	if err := os.WriteFile(take.Audio, wav, 0o644); err != nil {
		return Take{}, fileError(err, take.Audio)
	}

	var events bytes.Buffer
	if err := s.WriteEvents(&events); err != nil {
		return Take{}, err
	}
	if err := os.WriteFile(take.Events, events.Bytes(), 0o644); err != nil {
		return Take{}, fileError(err, take.Events)
	}
	return take, nil
}

func printSummary(w io.Writer, s *session.Session, take Take) {
	buf := s.Buffer()
	fmt.Fprintf(w, "Recorded %.1fs with %d key presses\n", buf.Duration(), len(s.Events()))
	fmt.Fprintf(w, "  audio:  %s\n", take.Audio)
	fmt.Fprintf(w, "  events: %s\n", take.Events)
}
