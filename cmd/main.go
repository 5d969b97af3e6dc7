package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/AliEhsanian/ytgrab/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := ""
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
			configPath = "config.toml"
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:    "ytgrab",
		Usage:   "Download YouTube videos and playlists",
		Version: "0.1.0",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags:    downloadFlags(),
		Action:   runner.Download,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error(err.Error())
		if hint := shared.Remediation(err); hint != "" {
			logger.Info(hint)
		}
		if shared.IsValidation(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
