package formatter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AliEhsanian/ytgrab/internal/models"
	tu "github.com/AliEhsanian/ytgrab/internal/testing"
)

func testDownloads() []*models.Download {
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []*models.Download{
		models.RehydrateDownload(
			"dl_1", "https://www.youtube.com/watch?v=abc123XYZ_-", "First Video",
			"1080p", "mp4", "/out/First Video.mp4", true, "", when, when,
		),
		models.RehydrateDownload(
			"dl_2", "https://www.youtube.com/watch?v=def456UVW_-", "",
			"best", "mp4", "", false, "video unavailable", when.Add(time.Minute), when.Add(time.Minute),
		),
	}
}

func TestExporters(t *testing.T) {
	downloads := testDownloads()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(downloads)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := string(data)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "ID,URL,Title") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.Contains(lines[1], "First Video") || !strings.Contains(lines[1], "true") {
			t.Errorf("unexpected first record: %s", lines[1])
		}
		if !strings.Contains(lines[2], "video unavailable") {
			t.Errorf("expected error detail in failed record: %s", lines[2])
		}
	})

	t.Run("ExportToCSV with no records", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(string(data)) != "ID,URL,Title,Quality,Format,Output,Succeeded,Error,CreatedAt" {
			t.Errorf("expected header only, got %q", string(data))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(downloads, "Session exports")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := string(data)
		if !strings.Contains(out, "# Session exports") {
			t.Errorf("expected custom title, got %q", out)
		}
		if !strings.Contains(out, "**Records:** 2") {
			t.Errorf("expected record count, got %q", out)
		}
		if !strings.Contains(out, "| ok |") || !strings.Contains(out, "| failed |") {
			t.Errorf("expected status cells, got %q", out)
		}
	})

	t.Run("ExportToMarkdown default title", func(t *testing.T) {
		data, err := ExportToMarkdown(nil, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "# Download history") {
			t.Errorf("expected default title, got %q", string(data))
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(downloads)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := string(data)
		if !strings.Contains(out, "✓") || !strings.Contains(out, "/out/First Video.mp4") {
			t.Errorf("expected success line, got %q", out)
		}
		if !strings.Contains(out, "✗") || !strings.Contains(out, "video unavailable") {
			t.Errorf("expected failure line, got %q", out)
		}
	})
}

func TestWriteExport(t *testing.T) {
	downloads := testDownloads()

	t.Run("writes csv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")

		if err := WriteExport(downloads, "csv", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "First Video") {
			t.Errorf("expected record in file, got %q", content)
		}
	})

	t.Run("writes markdown file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.md")

		if err := WriteExport(downloads, "md", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "# Download history") {
			t.Errorf("expected markdown title, got %q", content)
		}
	})

	t.Run("writes text file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.txt")

		if err := WriteExport(downloads, "txt", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		err := WriteExport(downloads, "xlsx", filepath.Join(t.TempDir(), "history.xlsx"))
		if err == nil {
			t.Fatal("expected error for unsupported format")
		}
		if !strings.Contains(err.Error(), "unsupported export format") {
			t.Errorf("expected unsupported format error, got %v", err)
		}
	})

	t.Run("propagates write failure", func(t *testing.T) {
		err := WriteExport(downloads, "csv", filepath.Join(t.TempDir(), "missing", "history.csv"))
		if err == nil {
			t.Fatal("expected error for unwritable path")
		}
	})
}
