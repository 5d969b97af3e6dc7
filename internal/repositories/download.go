package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/shared"
)

// DownloadRepository implements models.Repository[*models.Download] for download history.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new download record into the database with generated ID and sequence
func (r *DownloadRepository) Create(download *models.Download) error {
	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	download.SetID(id)

	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO downloads (id, sequence, url, title, quality, format, output_path, succeeded, error_detail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		download.URL(),
		download.Title(),
		download.Quality(),
		download.Format(),
		download.OutputPath(),
		download.Succeeded(),
		download.ErrorDetail(),
		download.CreatedAt(),
		download.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download record by ID
func (r *DownloadRepository) Get(id string) (*models.Download, error) {
	query := `
		SELECT id, url, title, quality, format, output_path, succeeded, error_detail, created_at, updated_at
		FROM downloads
		WHERE id = ?
	`

	return scanDownload(r.db.QueryRow(query, id))
}

// Update modifies an existing download record in the database
func (r *DownloadRepository) Update(download *models.Download) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	download.SetUpdatedAt(now)

	query := `
		UPDATE downloads
		SET title = ?, output_path = ?, succeeded = ?, error_detail = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		download.Title(),
		download.OutputPath(),
		download.Succeeded(),
		download.ErrorDetail(),
		now,
		download.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found: %s", download.ID())
	}

	return nil
}

// Delete removes a download record by ID
func (r *DownloadRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM downloads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found: %s", id)
	}

	return nil
}

// List retrieves download records matching the given criteria, newest first.
//
// Supported criteria: "succeeded" (bool), "url" (string), "limit" (int).
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.Download, error) {
	query := `
		SELECT id, url, title, quality, format, output_path, succeeded, error_detail, created_at, updated_at
		FROM downloads
		WHERE 1 = 1
	`

	args := []any{}

	if succeeded, ok := criteria["succeeded"].(bool); ok {
		query += " AND succeeded = ?"
		args = append(args, succeeded)
	}

	if url, ok := criteria["url"].(string); ok && url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		download, err := scanDownloadRow(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, download)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return downloads, nil
}

// scanDownload scans a single row into a [models.Download]
func scanDownload(row *sql.Row) (*models.Download, error) {
	var (
		id          string
		url         string
		title       string
		quality     string
		format      string
		outputPath  string
		succeeded   bool
		errorDetail string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &url, &title, &quality, &format, &outputPath, &succeeded, &errorDetail, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("download not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	return models.RehydrateDownload(id, url, title, quality, format, outputPath, succeeded, errorDetail, createdAt, updatedAt), nil
}

// scanDownloadRow scans a row from [sql.Rows] into a [models.Download]
func scanDownloadRow(rows *sql.Rows) (*models.Download, error) {
	var (
		id          string
		url         string
		title       string
		quality     string
		format      string
		outputPath  string
		succeeded   bool
		errorDetail string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := rows.Scan(&id, &url, &title, &quality, &format, &outputPath, &succeeded, &errorDetail, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	return models.RehydrateDownload(id, url, title, quality, format, outputPath, succeeded, errorDetail, createdAt, updatedAt), nil
}
