package analysis

import (
	"context"
	"os"

	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/waveform"
)

// RenderOptions controls a single frame render.
type RenderOptions struct {
	Output string
	Width  int // 0 uses render.width
	Height int // 0 uses render.height
	Mode   string
	Zoom   float64 // 0 keeps the zoomed-out view
	Pan    float64
	Select []float64 // click times toggled before rendering
	All    bool
	Trim   waveform.Trim
}

// Render loads a take and writes one PNG frame of it to opts.Output.
func Render(ctx context.Context, settings *conf.Settings, take Take, opts RenderOptions) error {
	log := logger.Global().Module(componentAnalysis)

	s, err := LoadTake(ctx, settings, take, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := applyView(s, opts); err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = settings.Render.Width
	}
	if height <= 0 {
		height = settings.Render.Height
	}

	frame := s.Render(width, height)
	surface := waveform.NewRasterSurface(width, height)
	waveform.Paint(surface, frame)

	f, err := os.Create(opts.Output)
	if err != nil {
		return fileError(err, opts.Output)
	}
	if err := surface.EncodePNG(f); err != nil {
		f.Close()
		return fileError(err, opts.Output)
	}
	if err := f.Close(); err != nil {
		return fileError(err, opts.Output)
	}

	log.Info("frame rendered",
		logger.String("output", opts.Output),
		logger.Int("width", width),
		logger.Int("height", height),
		logger.Int("markers", len(frame.Markers)))
	return nil
}

func applyView(s *session.Session, opts RenderOptions) error {
	if opts.Mode != "" {
		mode, err := waveform.ParseMode(opts.Mode)
		if err != nil {
			return err
		}
		s.SetMode(mode)
	}
	if opts.Zoom > 0 {
		s.SetZoom(opts.Zoom)
	}
	s.SetPan(opts.Pan)

	selectEvents(s, opts.Select, opts.All)
	return applyTrim(s, opts.Trim)
}

// selectEvents selects every event when all is set, otherwise toggles the
// event nearest to each time.
func selectEvents(s *session.Session, times []float64, all bool) {
	if all {
		s.SelectAll()
		return
	}
	for _, t := range times {
		s.ToggleAt(t)
	}
}

func applyTrim(s *session.Session, trim waveform.Trim) error {
	if trim.HasStart {
		if err := s.SetTrimStart(trim.Start); err != nil {
			return err
		}
	}
	if trim.HasEnd {
		if err := s.SetTrimEnd(trim.End); err != nil {
			return err
		}
	}
	return nil
}
