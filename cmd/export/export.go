package export

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/internal/analysis"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/waveform"
)

type options struct {
	export    analysis.ExportOptions
	trimStart float64
	trimEnd   float64
}

// Command creates a new command for exporting key press segments.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "export [take.wav] [events.json]",
		Short: "Export the audio around selected key presses",
		Long: `Write one WAV segment per selected key press, plus a metadata.json
describing them, into a zip archive. Select presses with --select or --all.
With --trimmed, the audio between the trim markers is also written as WAV.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.export.Output = settings.Export.Path
			opts.export.Trim = waveform.Trim{
				Start:    opts.trimStart,
				End:      opts.trimEnd,
				HasStart: cmd.Flags().Changed("trimstart"),
				HasEnd:   cmd.Flags().Changed("trimend"),
			}
			take := analysis.ResolveTake(args[0], eventsArg(args))
			bundle, err := analysis.Export(cmd.Context(), settings, take, opts.export, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d segments to %s\n", len(bundle.Files), opts.export.Output)
			return nil
		},
	}

	if err := setupFlags(cmd, settings, opts); err != nil {
		panic(err)
	}

	return cmd
}

// setupFlags configures flags specific to the export command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings, opts *options) error {
	cmd.Flags().StringVarP(&settings.Export.Path, "output", "o", viper.GetString("export.path"), "Output zip archive path")
	cmd.Flags().Float64SliceVar(&opts.export.Select, "select", nil, "Select the key press nearest to this time, repeatable")
	cmd.Flags().BoolVar(&opts.export.All, "all", false, "Select every key press")
	cmd.Flags().Float64Var(&opts.trimStart, "trimstart", 0, "Trim start marker in seconds")
	cmd.Flags().Float64Var(&opts.trimEnd, "trimend", 0, "Trim end marker in seconds")
	cmd.Flags().StringVar(&opts.export.TrimmedPath, "trimmed", "", "Also write the trimmed range to this WAV path")

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
