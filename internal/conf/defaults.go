// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/keyclip/internal/logger"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.device", "")
	viper.SetDefault("audio.bufferframes", 0)

	viper.SetDefault("timeline.halfwindow", 0.5)
	viper.SetDefault("timeline.hitthreshold", 0.1)

	viper.SetDefault("viewport.minzoom", 1.0)
	viper.SetDefault("viewport.maxzoom", 20.0)

	viper.SetDefault("render.width", 1200)
	viper.SetDefault("render.height", 300)
	viper.SetDefault("render.mode", renderWaveform)

	viper.SetDefault("playback.pollinterval", 50*time.Millisecond)

	viper.SetDefault("decode.ffmpegpath", "")
	viper.SetDefault("decode.samplerate", 48000)

	viper.SetDefault("export.path", "keypress_segments.zip")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "localhost:9090")

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
}
