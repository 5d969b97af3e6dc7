package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AliEhsanian/ytgrab/internal/convert"
	"github.com/AliEhsanian/ytgrab/internal/engine"
	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/shared"
)

// Recorder persists finished downloads. Nil disables history.
// Satisfied by repositories.DownloadRepository.
type Recorder interface {
	Create(d *models.Download) error
}

// Orchestrator runs download requests against an engine and converter.
type Orchestrator struct {
	engine    engine.Engine
	converter convert.Converter
	recorder  Recorder
	config    *shared.Config
	logger    *log.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators. recorder may
// be nil; config and logger fall back to defaults when nil.
func NewOrchestrator(eng engine.Engine, conv convert.Converter, recorder Recorder, config *shared.Config, logger *log.Logger) *Orchestrator {
	if config == nil {
		config = shared.DefaultConfig()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Orchestrator{
		engine:    eng,
		converter: conv,
		recorder:  recorder,
		config:    config,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (o *Orchestrator) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run downloads a single video described by req. The returned result is
// non-nil even on failure so callers can render and record it; the error
// carries the category for exit-code decisions.
func (o *Orchestrator) Run(ctx context.Context, req *models.DownloadRequest, progress chan<- ProgressUpdate) (*models.DownloadResult, error) {
	if o.engine == nil {
		return nil, fmt.Errorf("%w: engine not initialized", shared.ErrEngineFailure)
	}

	o.sendProgress(progress, resolvingUpdate(req.URL))

	fetched, err := o.engine.Fetch(ctx, req, func(ev models.ProgressEvent) {
		o.sendProgress(progress, downloadingUpdate(ev))
	})
	if err != nil {
		result := &models.DownloadResult{Succeeded: false, ErrorMessage: err.Error()}
		o.record(req, result)
		return result, err
	}

	result := &models.DownloadResult{
		OutputPath: fetched.OutputPath,
		Title:      fetched.Title,
		Duration:   fetched.Duration,
		Succeeded:  true,
	}

	if target, ok := o.conversionTarget(req, fetched.Ext); ok {
		finalPath, err := o.convert(ctx, fetched.OutputPath, target, progress)
		if err != nil {
			result.Succeeded = false
			result.ErrorMessage = err.Error()
			o.record(req, result)
			return result, err
		}
		result.OutputPath = finalPath
		result.Converted = true
	}

	o.record(req, result)
	o.sendProgress(progress, recordedUpdate(result.OutputPath))
	return result, nil
}

// RunPlaylist downloads every item of req's playlist sequentially into a
// per-playlist subdirectory. Item failures are isolated: each item yields a
// result, and the run only aborts when the context is cancelled or the
// playlist itself cannot be resolved.
func (o *Orchestrator) RunPlaylist(ctx context.Context, req *models.DownloadRequest, progress chan<- ProgressUpdate) ([]*models.DownloadResult, error) {
	if req.PlaylistID == "" {
		return nil, fmt.Errorf("%w: request has no playlist ID", shared.ErrInvalidURL)
	}

	o.sendProgress(progress, fetchingPlaylistUpdate(req.PlaylistID))

	items, err := o.engine.PlaylistItems(ctx, req.PlaylistID, o.config.Engine.PlaylistLimit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s has no items", shared.ErrVideoUnavailable, req.PlaylistID)
	}

	o.sendProgress(progress, playlistFoundUpdate(req.PlaylistID, len(items)))

	dir := filepath.Join(req.OutputDir, shared.SanitizeFilename(req.PlaylistID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDirectory, err)
	}

	results := make([]*models.DownloadResult, 0, len(items))
	total := len(items)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
		}

		o.sendProgress(progress, playlistItemUpdate(i+1, total, item))

		itemReq := *req
		itemReq.URL = "https://www.youtube.com/watch?v=" + item.VideoID
		itemReq.VideoID = item.VideoID
		itemReq.IsPlaylist = false
		itemReq.OutputDir = dir
		itemReq.Filename = playlistItemFilename(i+1, item)

		result, err := o.Run(ctx, &itemReq, progress)
		if err != nil {
			o.logger.Warn("playlist item failed", "index", i+1, "video_id", item.VideoID, "err", err)
			o.sendProgress(progress, playlistItemFailedUpdate(i+1, total, item, err))
			if result == nil {
				result = &models.DownloadResult{Title: item.Title, ErrorMessage: err.Error()}
			}
		}
		if result.Title == "" {
			result.Title = item.Title
		}
		results = append(results, result)
	}

	return results, nil
}

// conversionTarget decides whether the fetched file needs re-encoding and
// returns the target extension. Audio downloads are always extracted to mp3;
// video is converted when forced or when the native container differs from
// the requested one.
func (o *Orchestrator) conversionTarget(req *models.DownloadRequest, nativeExt string) (string, bool) {
	if req.Quality == models.QualityAudio {
		return "mp3", true
	}
	if req.ForceConvert {
		return req.Format.Ext(), true
	}
	if nativeExt != req.Format.Ext() {
		return req.Format.Ext(), true
	}
	return "", false
}

// convert re-encodes inputPath into the target container next to it and
// returns the final path. The intermediate download is removed unless
// configured otherwise.
func (o *Orchestrator) convert(ctx context.Context, inputPath, targetExt string, progress chan<- ProgressUpdate) (string, error) {
	if o.converter == nil {
		return "", fmt.Errorf("%w: converter not available", shared.ErrConversionFailed)
	}

	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	finalPath := base + "." + targetExt

	// Re-encoding into the same container would overwrite the input mid-read.
	source := inputPath
	if finalPath == inputPath {
		source = base + ".orig" + filepath.Ext(inputPath)
		if err := os.Rename(inputPath, source); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrConversionFailed, err)
		}
	}

	o.sendProgress(progress, convertingUpdate(0, targetExt))
	err := o.converter.Convert(ctx, source, finalPath, func(percent float64) {
		o.sendProgress(progress, convertingUpdate(percent, targetExt))
	})
	if err != nil {
		if source != inputPath {
			// Restore the original so a failed conversion still leaves the download.
			if rerr := os.Rename(source, inputPath); rerr != nil {
				o.logger.Error("failed to restore original file", "path", source, "err", rerr)
			}
		}
		return "", err
	}

	if !o.config.Output.KeepIntermediate {
		if err := os.Remove(source); err != nil {
			o.logger.Warn("failed to remove intermediate file", "path", source, "err", err)
		}
	}
	return finalPath, nil
}

func (o *Orchestrator) record(req *models.DownloadRequest, result *models.DownloadResult) {
	if o.recorder == nil {
		return
	}
	download := models.NewDownload(*req, *result)
	if err := download.Validate(); err != nil {
		o.logger.Warn("skipping invalid history record", "err", err)
		return
	}
	if err := o.recorder.Create(download); err != nil {
		o.logger.Warn("failed to record download", "url", req.URL, "err", err)
	}
}

func playlistItemFilename(index int, item engine.PlaylistItem) string {
	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = item.VideoID
	}
	return shared.SanitizeFilename(fmt.Sprintf("%02d - %s", index, title))
}
