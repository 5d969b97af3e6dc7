// package formatter provides functions to export download history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/AliEhsanian/ytgrab/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// ExportToCSV converts download records to CSV format with columns: ID, URL, Title, Quality, Format, Output, Succeeded, Error, CreatedAt
func ExportToCSV(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "URL", "Title", "Quality", "Format", "Output", "Succeeded", "Error", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range downloads {
		record := []string{
			d.ID(),
			d.URL(),
			d.Title(),
			d.Quality(),
			d.Format(),
			d.OutputPath(),
			strconv.FormatBool(d.Succeeded()),
			d.ErrorDetail(),
			d.CreatedAt().Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts download records to a Markdown table.
func ExportToMarkdown(downloads []*models.Download, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Download history"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Records:** %d\n\n", len(downloads)))

	buf.WriteString("| When | Title | Quality | Format | Status | Output |\n")
	buf.WriteString("|------|-------|---------|--------|--------|--------|\n")

	for _, d := range downloads {
		status := "ok"
		detail := d.OutputPath()
		if !d.Succeeded() {
			status = "failed"
			detail = d.ErrorDetail()
		}
		buf.WriteString(fmt.Sprintf(
			"| %s | %s | %s | %s | %s | %s |\n",
			d.CreatedAt().Format(timeLayout), d.Title(), d.Quality(), d.Format(), status, detail,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts download records to plain text, one record per line.
func ExportToText(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer

	for _, d := range downloads {
		if d.Succeeded() {
			buf.WriteString(fmt.Sprintf("✓ %s  %s  %s\n", d.CreatedAt().Format(timeLayout), d.Title(), d.OutputPath()))
		} else {
			buf.WriteString(fmt.Sprintf("✗ %s  %s  %s\n", d.CreatedAt().Format(timeLayout), d.URL(), d.ErrorDetail()))
		}
	}

	return buf.Bytes(), nil
}

// WriteExport renders downloads in the given format ("csv", "md" or "txt")
// and writes the result to path.
func WriteExport(downloads []*models.Download, format, path string) error {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ExportToCSV(downloads)
	case "md", "markdown":
		data, err = ExportToMarkdown(downloads, "")
	case "txt", "text":
		data, err = ExportToText(downloads)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
