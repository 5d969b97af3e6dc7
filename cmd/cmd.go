// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// downloadFlags are the flags of the root download action.
func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory to save the download in",
		},
		&cli.StringFlag{
			Name:    "filename",
			Aliases: []string{"f"},
			Usage:   "Custom filename without extension",
		},
		&cli.StringFlag{
			Name:    "quality",
			Aliases: []string{"q"},
			Usage:   "Quality tier: best, 4k, 1080p, 720p or audio",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output container: mp4, webm, mkv or avi",
		},
		&cli.BoolFlag{
			Name:  "force-convert",
			Usage: "Re-encode with ffmpeg even when the container already matches",
		},
		&cli.BoolFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Download every item of the playlist",
		},
		&cli.BoolFlag{
			Name:  "no-interactive",
			Usage: "Skip the interactive pickers and confirmation",
		},
		&cli.BoolFlag{
			Name:  "silent",
			Usage: "Suppress progress output, print only the result",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Pass the URL to the engine without validation",
		},
		&cli.BoolFlag{
			Name:  "keep-intermediate",
			Usage: "Keep the downloaded file after conversion",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
	}
}

// historyCommand lists recorded downloads
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "List recorded downloads",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to show",
				Value: 25,
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Show only failed downloads",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Export records to a file: csv, md or txt",
			},
			&cli.StringFlag{
				Name:  "export-path",
				Usage: "Path of the export file",
				Value: "history.csv",
			},
		},
		Action: r.History,
	}
}

// serveCommand runs the web front-end
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles config and database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
