package record

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/internal/analysis"
	"github.com/tphakala/keyclip/internal/conf"
)

// Command creates a new command for recording a take.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [output dir]",
		Short: "Record key presses against microphone audio",
		Long: `Capture audio from the microphone while every key pressed in the terminal
is logged on the timeline. Press Esc or Ctrl+C to stop. The take is written as
take.wav and events.json to the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analysis.RecordOptions{OutputDir: "."}
			if len(args) == 1 {
				opts.OutputDir = args[0]
			}
			return analysis.Record(cmd.Context(), settings, opts)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		panic(err)
	}

	return cmd
}

// setupFlags configures flags specific to the record command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Audio.Device, "device", viper.GetString("audio.device"), "Capture device name, empty selects the system default")
	cmd.Flags().IntVar(&settings.Audio.SampleRate, "samplerate", viper.GetInt("audio.samplerate"), "Capture sample rate in Hz")
	cmd.Flags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Serve Prometheus metrics while recording")
	cmd.Flags().StringVar(&settings.Metrics.Listen, "listen", viper.GetString("metrics.listen"), "Listen address and port of the metrics endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
