package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output    OutputConfig    `toml:"output"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Engine    EngineConfig    `toml:"engine"`
	Converter ConverterConfig `toml:"converter"`
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
}

// OutputConfig controls where downloaded files land.
type OutputConfig struct {
	Directory        string `toml:"directory"`
	KeepIntermediate bool   `toml:"keep_intermediate"`
}

// DefaultsConfig holds default quality/format applied when flags are omitted.
type DefaultsConfig struct {
	Quality string `toml:"quality"`
	Format  string `toml:"format"`
}

// EngineConfig contains download engine settings.
type EngineConfig struct {
	RateLimitBps  int64 `toml:"rate_limit_bps"`
	PlaylistLimit int   `toml:"playlist_limit"`
}

// ConverterConfig contains external transcoder settings.
type ConverterConfig struct {
	FFmpegPath   string `toml:"ffmpeg_path"`
	FFprobePath  string `toml:"ffprobe_path"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string  `toml:"host"`
	Port         int     `toml:"port"`
	RateLimitRPS float64 `toml:"rate_limit_rps"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
