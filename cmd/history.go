package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/AliEhsanian/ytgrab/internal/formatter"
	"github.com/AliEhsanian/ytgrab/internal/repositories"
	"github.com/AliEhsanian/ytgrab/internal/shared"
)

// historyRecord is the serializable view of a download record.
type historyRecord struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Quality     string `json:"quality"`
	Format      string `json:"format"`
	OutputPath  string `json:"output_path,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	ErrorDetail string `json:"error_detail,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// History lists recorded downloads, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewDownloadRepository(db)

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if cmd.Bool("failed") {
		criteria["succeeded"] = false
	}

	downloads, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if format := cmd.String("export"); format != "" {
		path := cmd.String("export-path")
		if err := formatter.WriteExport(downloads, format, path); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		r.writePlainln("exported %d records to %s", len(downloads), path)
		return nil
	}

	if cmd.Bool("json") {
		records := make([]historyRecord, len(downloads))
		for i, d := range downloads {
			records[i] = historyRecord{
				ID:          d.ID(),
				URL:         d.URL(),
				Title:       d.Title(),
				Quality:     d.Quality(),
				Format:      d.Format(),
				OutputPath:  d.OutputPath(),
				Succeeded:   d.Succeeded(),
				ErrorDetail: d.ErrorDetail(),
				CreatedAt:   d.CreatedAt().Format("2006-01-02 15:04:05"),
			}
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(downloads) == 0 {
		r.writePlainln("no downloads recorded")
		return nil
	}

	for _, d := range downloads {
		when := d.CreatedAt().Format("2006-01-02 15:04")
		if d.Succeeded() {
			r.writePlainln("✓ %s  %s  %s", when, d.Title(), d.OutputPath())
		} else {
			r.writePlainln("✗ %s  %s  %s", when, d.URL(), d.ErrorDetail())
		}
	}
	return nil
}
