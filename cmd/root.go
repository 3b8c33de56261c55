package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/cmd/export"
	"github.com/tphakala/keyclip/cmd/inspect"
	"github.com/tphakala/keyclip/cmd/record"
	"github.com/tphakala/keyclip/cmd/render"
	"github.com/tphakala/keyclip/internal/buildinfo"
	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/errors"
	"github.com/tphakala/keyclip/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keyclip",
		Short:         "Keyclip CLI",
		Long:          "Record key presses against microphone audio, then inspect, render and export the sound of each press.",
		Version:       info.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(info.String() + "\n")

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		record.Command(settings),
		inspect.Command(settings),
		render.Command(settings),
		export.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(settings, info)
	}

	return rootCmd
}

// initialize is called before any subcommands are run. It validates the
// merged settings and sets up logging and error telemetry.
func initialize(settings *conf.Settings, info *buildinfo.Context) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}
	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(central)

	if settings.Telemetry.Enabled {
		if err := errors.InitSentry(settings.Telemetry.DSN, info.Release()); err != nil {
			central.Module("main").Warn("error telemetry disabled", logger.Error(err))
		}
	}

	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().Float64Var(&settings.Timeline.HalfWindow, "halfwindow", viper.GetFloat64("timeline.halfwindow"), "Seconds of audio kept on each side of a key press")
	rootCmd.PersistentFlags().Float64Var(&settings.Timeline.HitThreshold, "hitthreshold", viper.GetFloat64("timeline.hitthreshold"), "Maximum distance in seconds between a click and the key press it selects")
	rootCmd.PersistentFlags().StringVar(&settings.Decode.FfmpegPath, "ffmpeg", viper.GetString("decode.ffmpegpath"), "Path to ffmpeg for MP3 and OGG input")
	rootCmd.PersistentFlags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Report errors to the configured Sentry DSN")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
