// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		validateAudioSettings,
		validateTimelineSettings,
		validateViewportSettings,
		validateRenderSettings,
		validatePlaybackAndDecode,
		validateTelemetrySettings,
		validateMetricsSettings,
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAudioSettings(s *Settings) []string {
	var errs []string
	if s.Audio.SampleRate < 8000 || s.Audio.SampleRate > 384000 {
		errs = append(errs, fmt.Sprintf("audio.samplerate must be between 8000 and 384000, got %d", s.Audio.SampleRate))
	}
	if s.Audio.BufferFrames < 0 {
		errs = append(errs, "audio.bufferframes must not be negative")
	}
	return errs
}

func validateTimelineSettings(s *Settings) []string {
	var errs []string
	if s.Timeline.HalfWindow <= 0 {
		errs = append(errs, "timeline.halfwindow must be positive")
	}
	if s.Timeline.HitThreshold <= 0 {
		errs = append(errs, "timeline.hitthreshold must be positive")
	}
	return errs
}

func validateViewportSettings(s *Settings) []string {
	var errs []string
	if s.Viewport.MinZoom < 1 {
		errs = append(errs, "viewport.minzoom must be at least 1")
	}
	if s.Viewport.MaxZoom < s.Viewport.MinZoom {
		errs = append(errs, "viewport.maxzoom must not be below viewport.minzoom")
	}
	return errs
}

func validateRenderSettings(s *Settings) []string {
	var errs []string
	if s.Render.Width <= 0 || s.Render.Height <= 0 {
		errs = append(errs, fmt.Sprintf("render size must be positive, got %dx%d", s.Render.Width, s.Render.Height))
	}
	switch strings.ToLower(s.Render.Mode) {
	case renderWaveform, renderSpectro:
	default:
		errs = append(errs, fmt.Sprintf("render.mode must be %q or %q, got %q", renderWaveform, renderSpectro, s.Render.Mode))
	}
	return errs
}

func validatePlaybackAndDecode(s *Settings) []string {
	var errs []string
	if s.Playback.PollInterval <= 0 {
		errs = append(errs, "playback.pollinterval must be positive")
	}
	if s.Decode.SampleRate <= 0 {
		errs = append(errs, "decode.samplerate must be positive")
	}
	return errs
}

func validateTelemetrySettings(s *Settings) []string {
	if s.Telemetry.Enabled && s.Telemetry.DSN == "" {
		return []string{"telemetry.dsn is required when telemetry is enabled"}
	}
	return nil
}

func validateMetricsSettings(s *Settings) []string {
	if !s.Metrics.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(s.Metrics.Listen); err != nil {
		return []string{fmt.Sprintf("metrics.listen must be host:port, got %q", s.Metrics.Listen)}
	}
	return nil
}
