// config.go: settings struct for keyclip and the functions that load and save it.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/keyclip/internal/logger"
)

// AudioSettings contains capture device settings.
type AudioSettings struct {
	SampleRate   int    // capture sample rate in Hz
	Device       string // capture device name substring, empty selects the default device
	BufferFrames int    // capture period size in frames, 0 lets the backend choose
}

// TimelineSettings controls key event windows and selection.
type TimelineSettings struct {
	HalfWindow   float64 // seconds on each side of a key press
	HitThreshold float64 // maximum click distance in seconds that selects an event
}

// ViewportSettings bounds the zoom level.
type ViewportSettings struct {
	MinZoom float64
	MaxZoom float64
}

// RenderSettings contains frame rendering defaults.
type RenderSettings struct {
	Width  int
	Height int
	Mode   string // waveform or spectrogram
}

// PlaybackSettings controls playhead polling.
type PlaybackSettings struct {
	PollInterval time.Duration
}

// DecodeSettings configures the decode service.
type DecodeSettings struct {
	FfmpegPath string // path to ffmpeg, empty resolves from PATH
	SampleRate int    // output rate for ffmpeg decoded formats
}

// ExportSettings configures segment export.
type ExportSettings struct {
	Path string // default archive path
}

// TelemetrySettings configures optional error reporting.
type TelemetrySettings struct {
	Enabled bool
	DSN     string
}

// MetricsSettings configures the Prometheus endpoint served while recording.
type MetricsSettings struct {
	Enabled bool
	Listen  string // host:port
}

// Settings is the root configuration struct.
type Settings struct {
	Debug     bool
	Audio     AudioSettings
	Timeline  TimelineSettings
	Viewport  ViewportSettings
	Render    RenderSettings
	Playback  PlaybackSettings
	Decode    DecodeSettings
	Export    ExportSettings
	Telemetry TelemetrySettings
	Metrics   MetricsSettings
	Logging   logger.LoggingConfig
}

const (
	envPrefix      = "KEYCLIP"
	configName     = "config"
	configType     = "yaml"
	appConfigDir   = "keyclip"
	renderWaveform = "waveform"
	renderSpectro  = "spectrogram"
)

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings
// instance. A missing config file is not an error; defaults apply.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, env bindings and search paths, then reads the config file.
func initViper() error {
	setDefaultConfig()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// an explicit --config path wins over the search paths
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName(configName)
		viper.SetConfigType(configType)

		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml in order.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return append(paths, filepath.Join(homeDir, ".config", appConfigDir)), nil
}

// GetSettings returns the most recently loaded settings, or nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
