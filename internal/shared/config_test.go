package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./ytgrab.db" {
			t.Errorf("expected database path ./ytgrab.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Defaults.Quality != "best" {
			t.Errorf("expected default quality best, got %s", config.Defaults.Quality)
		}

		if config.Converter.FFmpegPath != "ffmpeg" {
			t.Errorf("expected ffmpeg path ffmpeg, got %s", config.Converter.FFmpegPath)
		}

		if config.Output.KeepIntermediate {
			t.Error("intermediate files should not be kept by default")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[output]
directory = "/srv/media"
keep_intermediate = true

[defaults]
quality = "720p"
format = "webm"

[engine]
rate_limit_bps = 1048576
playlist_limit = 25

[converter]
ffmpeg_path = "/usr/local/bin/ffmpeg"
ffprobe_path = "/usr/local/bin/ffprobe"
audio_bitrate = "256k"

[server]
host = "0.0.0.0"
port = 8080
rate_limit_rps = 2.5

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Output.Directory != "/srv/media" {
			t.Errorf("expected output directory /srv/media, got %s", config.Output.Directory)
		}

		if !config.Output.KeepIntermediate {
			t.Error("expected keep_intermediate true")
		}

		if config.Engine.RateLimitBps != 1048576 {
			t.Errorf("expected rate limit 1048576, got %d", config.Engine.RateLimitBps)
		}

		if config.Defaults.Format != "webm" {
			t.Errorf("expected default format webm, got %s", config.Defaults.Format)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("loading a missing config file should fail")
		}
	})
}
