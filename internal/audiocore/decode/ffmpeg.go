package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tphakala/keyclip/internal/audiocore"
)

// maxStderr bounds how much ffmpeg stderr is kept for error messages.
const maxStderr = 1024

// resolveFFmpeg returns the configured ffmpeg binary or looks one up in PATH.
func resolveFFmpeg(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return path, nil
}

// decodeFFmpeg pipes data through ffmpeg and reads back mono float32 PCM at
// cfg.SampleRate.
func decodeFFmpeg(ctx context.Context, cfg Config, data []byte) (*audiocore.SampleBuffer, error) {
	path, err := resolveFFmpeg(cfg.FfmpegPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0", // Input from stdin
		"-vn",
		"-f", "f32le", // 32-bit float little-endian
		"-ac", "1",
		"-ar", strconv.Itoa(cfg.SampleRate),
		"pipe:1", // Output to stdout
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w: %s", err, trimStderr(stderr.String()))
	}

	raw := stdout.Bytes()
	if len(raw)%4 != 0 {
		raw = raw[:len(raw)-len(raw)%4]
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		v := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		if math.IsNaN(float64(v)) {
			v = 0
		}
		samples[i] = min(max(v, -1), 1)
	}

	return audiocore.NewSampleBuffer(samples, cfg.SampleRate)
}

func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}
