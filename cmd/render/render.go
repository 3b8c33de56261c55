package render

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/internal/analysis"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/waveform"
)

type options struct {
	render    analysis.RenderOptions
	trimStart float64
	trimEnd   float64
}

// Command creates a new command for rendering a take to PNG.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "render [take.wav] [events.json]",
		Short: "Render a take as a waveform or spectrogram image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.render.Trim = waveform.Trim{
				Start:    opts.trimStart,
				End:      opts.trimEnd,
				HasStart: cmd.Flags().Changed("trimstart"),
				HasEnd:   cmd.Flags().Changed("trimend"),
			}
			take := analysis.ResolveTake(args[0], eventsArg(args))
			return analysis.Render(cmd.Context(), settings, take, opts.render)
		},
	}

	if err := setupFlags(cmd, settings, opts); err != nil {
		panic(err)
	}

	return cmd
}

// setupFlags configures flags specific to the render command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings, opts *options) error {
	cmd.Flags().StringVarP(&opts.render.Output, "output", "o", "frame.png", "Output PNG path")
	cmd.Flags().IntVar(&settings.Render.Width, "width", viper.GetInt("render.width"), "Image width in pixels")
	cmd.Flags().IntVar(&settings.Render.Height, "height", viper.GetInt("render.height"), "Image height in pixels")
	cmd.Flags().StringVar(&opts.render.Mode, "mode", viper.GetString("render.mode"), "Render mode: waveform, spectrogram")
	cmd.Flags().Float64Var(&opts.render.Zoom, "zoom", 0, "Zoom level, 0 shows the whole take")
	cmd.Flags().Float64Var(&opts.render.Pan, "pan", 0, "Start of the visible window in seconds")
	cmd.Flags().Float64SliceVar(&opts.render.Select, "select", nil, "Select the key press nearest to this time, repeatable")
	cmd.Flags().BoolVar(&opts.render.All, "all", false, "Select every key press")
	cmd.Flags().Float64Var(&opts.trimStart, "trimstart", 0, "Trim start marker in seconds")
	cmd.Flags().Float64Var(&opts.trimEnd, "trimend", 0, "Trim end marker in seconds")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

// eventsArg returns the optional events document argument.
func eventsArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}
