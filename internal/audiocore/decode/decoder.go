// Package decode turns encoded audio bytes into mono SampleBuffers.
//
// WAV and FLAC are decoded natively; MP3 and OGG are piped through ffmpeg.
// Multichannel input keeps only the first channel.
package decode

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/tphakala/keyclip/internal/audiocore"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
)

const componentDecode = "decode"

// Format is a container accepted by the decoder.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatOGG  Format = "ogg"
	FormatFLAC Format = "flac"
)

var mimeFormats = map[string]Format{
	"audio/wav":       FormatWAV,
	"audio/x-wav":     FormatWAV,
	"audio/wave":      FormatWAV,
	"audio/vnd.wave":  FormatWAV,
	"wav":             FormatWAV,
	"audio/mpeg":      FormatMP3,
	"audio/mp3":       FormatMP3,
	"mp3":             FormatMP3,
	"audio/ogg":       FormatOGG,
	"audio/vorbis":    FormatOGG,
	"application/ogg": FormatOGG,
	"ogg":             FormatOGG,
	"audio/flac":      FormatFLAC,
	"audio/x-flac":    FormatFLAC,
	"flac":            FormatFLAC,
}

var extensionHints = map[string]string{
	".wav":  audiocore.MimeWAV,
	".wave": audiocore.MimeWAV,
	".mp3":  audiocore.MimeMP3,
	".ogg":  audiocore.MimeOGG,
	".oga":  audiocore.MimeOGG,
	".flac": audiocore.MimeFLAC,
}

// ParseMimeHint maps a MIME type or bare format name to a Format. Parameters
// such as "; codecs=opus" are ignored.
func ParseMimeHint(hint string) (Format, error) {
	base, _, _ := strings.Cut(hint, ";")
	base = strings.ToLower(strings.TrimSpace(base))

	if f, ok := mimeFormats[base]; ok {
		return f, nil
	}
	return "", errors.Newf("unsupported audio format %q", hint).
		Component(componentDecode).
		Category(errors.CategoryUnsupportedFormat).
		Context("operation", "parse_mime_hint").
		Build()
}

// HintFromPath guesses a MIME hint from a file extension. Unknown extensions
// return the extension itself, which ParseMimeHint rejects.
func HintFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if hint, ok := extensionHints[ext]; ok {
		return hint
	}
	return strings.TrimPrefix(ext, ".")
}

// Config configures the decode service.
type Config struct {
	FfmpegPath string // empty resolves ffmpeg from PATH
	SampleRate int    // output rate for ffmpeg decoded input
}

// Service implements audiocore.Decoder.
type Service struct {
	config Config
	log    logger.Logger
}

// NewService returns a decode service. A nil logger uses the global logger.
func NewService(config Config, log logger.Logger) *Service {
	if config.SampleRate <= 0 {
		config.SampleRate = 48000
	}
	if log == nil {
		log = logger.Global().Module(componentDecode)
	}
	return &Service{config: config, log: log}
}

// Decode implements audiocore.Decoder.
func (s *Service) Decode(ctx context.Context, data []byte, mimeHint string) (*audiocore.SampleBuffer, error) {
	format, err := ParseMimeHint(mimeHint)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf *audiocore.SampleBuffer
	switch format {
	case FormatWAV:
		buf, err = decodeWAV(data)
	case FormatFLAC:
		buf, err = decodeFLAC(data)
	case FormatMP3, FormatOGG:
		buf, err = decodeFFmpeg(ctx, s.config, data)
	}

	if err != nil {
		return nil, errors.New(err).
			Component(componentDecode).
			Category(errors.CategoryDecode).
			AudioContext(mimeHint, 0, len(data)).
			Timing("decode_"+string(format), time.Since(start)).
			Build()
	}

	s.log.Debug("decoded audio",
		logger.String("format", string(format)),
		logger.Int("bytes", len(data)),
		logger.Int("samples", buf.Len()),
		logger.Int("sample_rate", buf.SampleRate()),
		logger.Duration("elapsed", time.Since(start)))

	return buf, nil
}

// toFloat scales an integer sample by divisor and clamps it to [-1, 1].
func toFloat(sample int, divisor float32) float32 {
	return min(max(float32(sample)/divisor, -1), 1)
}

// divisorFor returns the full-scale value for a bit depth. 16-bit uses
// 32767 so decoding exactly inverts the WAV encoder's quantization.
func divisorFor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32767, nil
	case 24:
		return 8388607, nil
	case 32:
		return 2147483647, nil
	default:
		return 0, errors.Newf("unsupported bit depth: %d", bitDepth).
			Component(componentDecode).
			Category(errors.CategoryDecode).
			Build()
	}
}
