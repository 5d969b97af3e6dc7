package models

import (
	"fmt"
	"time"
)

// QualityTier is a coarse resolution/bitrate bucket requested by the user.
type QualityTier int

const (
	QualityBest QualityTier = iota
	Quality4K
	Quality1080p
	Quality720p
	QualityAudio
)

// ParseQualityTier parses a user-facing quality string (best, 4k, 1080p, 720p, audio).
func ParseQualityTier(s string) (QualityTier, error) {
	switch s {
	case "", "best":
		return QualityBest, nil
	case "4k", "2160p":
		return Quality4K, nil
	case "1080p":
		return Quality1080p, nil
	case "720p":
		return Quality720p, nil
	case "audio", "audio-only":
		return QualityAudio, nil
	default:
		return QualityBest, fmt.Errorf("unknown quality tier %q", s)
	}
}

func (q QualityTier) String() string {
	switch q {
	case QualityBest:
		return "best"
	case Quality4K:
		return "4k"
	case Quality1080p:
		return "1080p"
	case Quality720p:
		return "720p"
	case QualityAudio:
		return "audio"
	default:
		return ""
	}
}

// MaxHeight returns the pixel-height cap for the tier, or 0 when unbounded.
func (q QualityTier) MaxHeight() int {
	switch q {
	case Quality4K:
		return 2160
	case Quality1080p:
		return 1080
	case Quality720p:
		return 720
	default:
		return 0
	}
}

// OutputFormat is the requested output container.
type OutputFormat int

const (
	FormatMP4 OutputFormat = iota
	FormatWebM
	FormatMKV
	FormatAVI
)

// ParseOutputFormat parses a user-facing format string (mp4, webm, mkv, avi).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "mp4":
		return FormatMP4, nil
	case "webm":
		return FormatWebM, nil
	case "mkv":
		return FormatMKV, nil
	case "avi":
		return FormatAVI, nil
	default:
		return FormatMP4, fmt.Errorf("unknown output format %q", s)
	}
}

func (f OutputFormat) String() string { return f.Ext() }

// Ext returns the file extension for the container, without a leading dot.
func (f OutputFormat) Ext() string {
	switch f {
	case FormatMP4:
		return "mp4"
	case FormatWebM:
		return "webm"
	case FormatMKV:
		return "mkv"
	case FormatAVI:
		return "avi"
	default:
		return ""
	}
}

// DownloadRequest is the concrete request consumed by the orchestrator.
//
// Constructed once per invocation by the resolver and immutable afterwards.
type DownloadRequest struct {
	URL          string       // Canonical URL accepted by the engine
	VideoID      string       // Extracted video ID, empty for playlist/channel URLs
	PlaylistID   string       // Extracted playlist ID when present
	Quality      QualityTier  // Requested quality tier
	Format       OutputFormat // Requested output container
	OutputDir    string       // Destination directory, created by the resolver
	Filename     string       // Optional custom filename (without extension)
	IsPlaylist   bool         // Download the whole playlist
	ForceConvert bool         // Re-encode to Format even when the native container matches
}

// ProgressEvent is an ephemeral progress sample emitted during a download.
type ProgressEvent struct {
	BytesDownloaded int64
	TotalBytes      int64
	Percent         float64
	ETASeconds      int // -1 when unknown
}

// DownloadResult is the terminal value returned once per request (or per playlist item).
type DownloadResult struct {
	OutputPath   string
	Title        string
	Duration     int // seconds, 0 when unknown
	Succeeded    bool
	Converted    bool   // an external conversion produced the final file
	ErrorMessage string // human-readable, categorized; empty on success
}

// Download is a persisted history record for a finished request.
type Download struct {
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
}

// NewDownload builds a history record from a request and its result.
func NewDownload(req DownloadRequest, res DownloadResult) *Download {
	now := time.Now()
	return &Download{
		url:         req.URL,
		title:       res.Title,
		quality:     req.Quality.String(),
		format:      req.Format.Ext(),
		outputPath:  res.OutputPath,
		succeeded:   res.Succeeded,
		errorDetail: res.ErrorMessage,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (d *Download) ID() string           { return d.id }
func (d *Download) CreatedAt() time.Time { return d.createdAt }
func (d *Download) UpdatedAt() time.Time { return d.updatedAt }

func (d *Download) URL() string         { return d.url }
func (d *Download) Title() string       { return d.title }
func (d *Download) Quality() string     { return d.quality }
func (d *Download) Format() string      { return d.format }
func (d *Download) OutputPath() string  { return d.outputPath }
func (d *Download) Succeeded() bool     { return d.succeeded }
func (d *Download) ErrorDetail() string { return d.errorDetail }

func (d *Download) SetID(id string)             { d.id = id }
func (d *Download) SetUpdatedAt(t time.Time)    { d.updatedAt = t }
func (d *Download) SetCreatedAt(t time.Time)    { d.createdAt = t }
func (d *Download) SetTitle(title string)       { d.title = title }
func (d *Download) SetOutputPath(path string)   { d.outputPath = path }
func (d *Download) SetSucceeded(ok bool)        { d.succeeded = ok }
func (d *Download) SetErrorDetail(msg string)   { d.errorDetail = msg }
func (d *Download) SetURL(url string)           { d.url = url }
func (d *Download) SetQuality(quality string)   { d.quality = quality }
func (d *Download) SetFormat(format string)     { d.format = format }

// Validate checks required fields before persistence.
func (d *Download) Validate() error {
	if d.url == "" {
		return fmt.Errorf("download record requires a URL")
	}
	if !d.succeeded && d.errorDetail == "" {
		return fmt.Errorf("failed download record requires an error detail")
	}
	return nil
}

// RehydrateDownload reconstructs a Download from persisted columns.
func RehydrateDownload(id, url, title, quality, format, outputPath string, succeeded bool, errorDetail string, createdAt, updatedAt time.Time) *Download {
	return &Download{
		id:          id,
		url:         url,
		title:       title,
		quality:     quality,
		format:      format,
		outputPath:  outputPath,
		succeeded:   succeeded,
		errorDetail: errorDetail,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}
