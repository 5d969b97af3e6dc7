package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/resolver"
	"github.com/AliEhsanian/ytgrab/internal/shared"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
	"github.com/AliEhsanian/ytgrab/internal/ui"
)

// Download resolves the URL and flags into a request and runs it, either
// through the interactive TUI or with plain line-based progress.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: URL", shared.ErrMissingArgument)
	}

	r.reloadConfig(cmd)

	silent := cmd.Bool("silent")
	interactive := !cmd.Bool("no-interactive") && !silent

	if cmd.Bool("keep-intermediate") {
		r.config.Output.KeepIntermediate = true
	}

	quality := cmd.String("quality")
	if quality == "" {
		quality = r.config.Defaults.Quality
	}
	format := cmd.String("format")
	if format == "" {
		format = r.config.Defaults.Format
	}
	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Output.Directory
	}

	req, err := resolver.Resolve(resolver.Input{
		URL:          url,
		Quality:      quality,
		Format:       format,
		OutputDir:    outputDir,
		Filename:     cmd.String("filename"),
		Playlist:     cmd.Bool("playlist"),
		ForceConvert: cmd.Bool("force-convert"),
		Force:        cmd.Bool("force"),
	})
	if err != nil {
		return err
	}

	orch, cleanup := r.orchestrator()
	defer cleanup()

	var results []*models.DownloadResult
	if interactive {
		results, err = r.runInteractive(ctx, orch, req, !cmd.IsSet("quality"), !cmd.IsSet("format"))
	} else {
		results, err = r.runPlain(ctx, orch, req, silent)
	}

	if err != nil && len(results) == 0 {
		return err
	}
	sumErr := r.summarize(results)
	if err != nil {
		return err
	}
	return sumErr
}

// reloadConfig swaps the runner config when --config points at a readable file
// that is not the one loaded at startup.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	configPath := cmd.String("config")
	if configPath == "" || configPath == r.configPath {
		return
	}
	if _, err := os.Stat(configPath); err != nil {
		return
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", configPath, "error", err)
		return
	}
	r.config = config
	r.configPath = configPath
}

func (r *Runner) runInteractive(ctx context.Context, orch *tasks.Orchestrator, req *models.DownloadRequest, pickQuality, pickFormat bool) ([]*models.DownloadResult, error) {
	model := ui.NewModel(ctx, orch, req, pickQuality, pickFormat)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("interactive session failed: %w", err)
	}

	if m, ok := final.(*ui.Model); ok {
		return m.Results()
	}
	return nil, nil
}

func (r *Runner) runPlain(ctx context.Context, orch *tasks.Orchestrator, req *models.DownloadRequest, silent bool) ([]*models.DownloadResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})

	go func() {
		defer close(printed)
		inline := false
		for update := range progressCh {
			if silent {
				continue
			}
			switch update.Phase {
			case tasks.Download, tasks.Convert:
				if update.Total == 100 {
					r.writePlain("\r%s    ", update.Message)
					inline = true
					continue
				}
				fallthrough
			default:
				if inline {
					r.writePlain("\n")
					inline = false
				}
				r.writePlainln("%s", update.Message)
			}
		}
		if inline {
			r.writePlain("\n")
		}
	}()

	var results []*models.DownloadResult
	var err error
	if req.IsPlaylist {
		results, err = orch.RunPlaylist(ctx, req, progressCh)
	} else {
		var result *models.DownloadResult
		result, err = orch.Run(ctx, req, progressCh)
		if result != nil {
			results = []*models.DownloadResult{result}
		}
	}

	close(progressCh)
	<-printed
	return results, err
}

// summarize prints per-item outcomes and maps failures to an exit error.
func (r *Runner) summarize(results []*models.DownloadResult) error {
	if len(results) == 0 {
		r.writePlainln("aborted")
		return nil
	}

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Succeeded {
			succeeded++
			r.writePlainln("✓ %s", result.OutputPath)
		} else {
			failed++
			r.writePlainln("✗ %s: %s", result.Title, result.ErrorMessage)
		}
	}

	if failed == 0 {
		return nil
	}
	if succeeded == 0 {
		return fmt.Errorf("no items completed")
	}
	return fmt.Errorf("%d of %d items failed", failed, succeeded+failed)
}
