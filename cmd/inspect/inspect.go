package inspect

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/internal/analysis"
	"github.com/tphakala/keyclip/internal/conf"
)

type options struct {
	clicks []float64
}

// Command creates a new command for listing the key presses of a take.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "inspect [take.wav] [events.json]",
		Short: "Show the key press timeline of a take",
		Long: `Decode a take and print its key presses with their segment windows.
Each --click time is hit tested against the timeline the way a click on the
waveform would be.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			take := analysis.ResolveTake(args[0], eventsArg(args))
			return analysis.Inspect(cmd.Context(), settings, cmd.OutOrStdout(), take, opts.clicks)
		},
	}

	if err := setupFlags(cmd, opts); err != nil {
		panic(err)
	}

	return cmd
}

// setupFlags configures flags specific to the inspect command.
func setupFlags(cmd *cobra.Command, opts *options) error {
	cmd.Flags().Float64SliceVar(&opts.clicks, "click", nil, "Click time in seconds to hit test, repeatable")

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
