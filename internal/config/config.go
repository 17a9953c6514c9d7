package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/berlandbor/wavtrim"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "WAVTRIM"
	configName = "wavtrim"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads the configuration. An explicit path must exist; without one,
// wavtrim.yaml is looked up in the working directory and in
// $HOME/.config/wavtrim, and a missing file just means defaults.
// WAVTRIM_* environment variables override both, e.g. WAVTRIM_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(filepath.Clean(path))
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every value a command or the server relies on.
func (c *Config) Validate() error {
	if c.Export.Rate <= 0 {
		return fmt.Errorf("%w: export.rate %v must be positive", ErrInvalidConfig, c.Export.Rate)
	}

	if c.Export.Gain < 0 {
		return fmt.Errorf("%w: export.gain %v must not be negative", ErrInvalidConfig, c.Export.Gain)
	}

	if c.Export.Filename == "" {
		return fmt.Errorf("%w: export.filename is empty", ErrInvalidConfig)
	}

	if c.Waveform.Width <= 0 || c.Waveform.Width > wavtrim.MaxWaveformWidth || c.Waveform.Height <= 0 {
		return fmt.Errorf("%w: waveform size %dx%d", ErrInvalidConfig, c.Waveform.Width, c.Waveform.Height)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port: %d", ErrInvalidConfig, c.Server.Port)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: server.max_upload_mb %d must be positive", ErrInvalidConfig, c.Server.MaxUploadMB)
	}

	level := strings.ToLower(c.Log.Level)
	for _, l := range logLevels {
		if level == l {
			c.Log.Level = level
			return nil
		}
	}

	return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export.rate", 1.0)
	v.SetDefault("export.gain", 1.0)
	v.SetDefault("export.filename", wavtrim.SuggestedFilename)

	v.SetDefault("waveform.width", wavtrim.DefaultWaveformWidth)
	v.SetDefault("waveform.height", 200)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 64)

	v.SetDefault("log.level", "info")
}
