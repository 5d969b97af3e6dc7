package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/AliEhsanian/ytgrab/internal/convert"
	"github.com/AliEhsanian/ytgrab/internal/engine"
	"github.com/AliEhsanian/ytgrab/internal/repositories"
	"github.com/AliEhsanian/ytgrab/internal/shared"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		historyCommand, serveCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// orchestrator builds the download pipeline from the runner's config. The
// history database is best-effort: when it cannot be opened the pipeline runs
// without a recorder. The returned cleanup closes the database handle.
func (r *Runner) orchestrator() (*tasks.Orchestrator, func()) {
	eng := engine.New(r.config.Engine.RateLimitBps)
	conv := convert.New(
		r.config.Converter.FFmpegPath,
		r.config.Converter.FFprobePath,
		r.config.Converter.AudioBitrate,
	)

	var recorder tasks.Recorder
	cleanup := func() {}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("history database unavailable", "error", err)
	} else {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			r.logger.Warn("history migrations failed", "error", err)
			db.Close()
		} else {
			recorder = repositories.NewDownloadRepository(db)
			cleanup = func() { db.Close() }
		}
	}

	return tasks.NewOrchestrator(eng, conv, recorder, r.config, r.logger), cleanup
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
