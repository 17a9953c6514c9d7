package config

import (
	"net"
	"strconv"

	"github.com/berlandbor/wavtrim"
)

// Config represents the complete application configuration
type Config struct {
	Export   ExportConfig   `mapstructure:"export"`
	Waveform WaveformConfig `mapstructure:"waveform"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// ExportConfig contains the default render controls
type ExportConfig struct {
	Rate     float64 `mapstructure:"rate"`
	Gain     float64 `mapstructure:"gain"`
	Filename string  `mapstructure:"filename"`
}

// WaveformConfig contains waveform display settings
type WaveformConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Settings returns the export controls as session settings.
func (c *Config) Settings() wavtrim.Settings {
	return wavtrim.Settings{PlaybackRate: c.Export.Rate, Gain: c.Export.Gain}
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
