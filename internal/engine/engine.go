// package engine adapts the embedded YouTube download library to the
// request/result types used by the rest of the application.
//
// The engine owns the two network-facing steps of a download: resolving a
// video's metadata and final media URL, and streaming the chosen format to
// disk. Everything else (format conversion, history, presentation) happens
// around it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
	"github.com/ytget/ytdlp/v2/downloader"
	"github.com/ytget/ytdlp/v2/errs"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/resolver"
	"github.com/AliEhsanian/ytgrab/internal/shared"
)

// Result is the engine's view of a finished fetch: the file it wrote and the
// metadata it learned along the way.
type Result struct {
	OutputPath string
	Title      string
	Duration   int    // seconds, 0 when the metadata omits it
	Ext        string // native container of the downloaded stream, without dot
}

// PlaylistItem is one entry of a resolved playlist, in playlist order.
type PlaylistItem struct {
	VideoID string
	Title   string
	Index   int
}

// Engine fetches media. The single implementation talks to YouTube; tests
// substitute fakes.
type Engine interface {
	Fetch(ctx context.Context, req *models.DownloadRequest, onProgress func(models.ProgressEvent)) (*Result, error)
	PlaylistItems(ctx context.Context, playlistID string, limit int) ([]PlaylistItem, error)
}

// YTDLP is the production engine backed by the ytdlp library.
type YTDLP struct {
	RateLimitBps int64
}

// New returns a production engine. rateLimitBps of zero disables throttling.
func New(rateLimitBps int64) *YTDLP {
	return &YTDLP{RateLimitBps: rateLimitBps}
}

// Fetch resolves req's URL and downloads the selected format into
// req.OutputDir. The output filename is the custom filename when set,
// otherwise the sanitized video title; the extension always reflects the
// stream actually delivered, which may differ from the requested container.
func (e *YTDLP) Fetch(ctx context.Context, req *models.DownloadRequest, onProgress func(models.ProgressEvent)) (*Result, error) {
	selector, desiredExt := resolver.FormatSelector(req)

	dl := ytdlp.New().WithFormat(selector, desiredExt).WithRateLimit(e.RateLimitBps)

	finalURL, info, err := dl.ResolveURL(ctx, req.URL)
	if err != nil {
		return nil, Categorize(err)
	}

	ext := chosenExt(info, finalURL)
	name := req.Filename
	if name == "" {
		name = shared.SanitizeFilename(info.Title)
	}
	outputPath := filepath.Join(req.OutputDir, name+"."+ext)

	start := time.Now()
	progressFunc := func(p downloader.Progress) {
		if onProgress == nil {
			return
		}
		onProgress(models.ProgressEvent{
			BytesDownloaded: p.DownloadedSize,
			TotalBytes:      p.TotalSize,
			Percent:         p.Percent,
			ETASeconds:      etaSeconds(p.DownloadedSize, p.TotalSize, time.Since(start)),
		})
	}

	fetcher := downloader.New(nil, progressFunc, e.RateLimitBps)
	if err := fetcher.Download(ctx, finalURL, outputPath); err != nil {
		return nil, Categorize(err)
	}

	return &Result{
		OutputPath: outputPath,
		Title:      info.Title,
		Duration:   info.Duration,
		Ext:        ext,
	}, nil
}

// PlaylistItems resolves a playlist into its entries, following pagination
// up to limit items.
func (e *YTDLP) PlaylistItems(ctx context.Context, playlistID string, limit int) ([]PlaylistItem, error) {
	raw, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, limit)
	if err != nil {
		return nil, Categorize(err)
	}
	items := make([]PlaylistItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, PlaylistItem{VideoID: it.VideoID, Title: it.Title, Index: it.Index})
	}
	return items, nil
}

// chosenExt infers the container extension of the format the resolver picked.
// The final URL embeds the chosen itag, so match it against the advertised
// format list and read the mime subtype.
func chosenExt(info *ytdlp.VideoInfo, finalURL string) string {
	for _, f := range info.Formats {
		if f.Itag != 0 && strings.Contains(finalURL, "itag="+strconv.Itoa(f.Itag)) {
			return extFromMime(f.MimeType)
		}
	}
	return extFromMime("")
}

func extFromMime(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch strings.TrimSpace(mime) {
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	default:
		return "mp4"
	}
}

func etaSeconds(downloaded, total int64, elapsed time.Duration) int {
	if total <= 0 || downloaded <= 0 || elapsed <= 0 {
		return -1
	}
	rate := float64(downloaded) / elapsed.Seconds()
	if rate <= 0 {
		return -1
	}
	return int(float64(total-downloaded) / rate)
}

// Categorize maps library and transport errors onto the application's error
// families so callers can branch on errors.Is and render remediation hints.
func Categorize(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrVideoUnavailable):
		return fmt.Errorf("%w: %v", shared.ErrVideoUnavailable, err)
	case errors.Is(err, errs.ErrPrivate):
		return fmt.Errorf("%w: %v", shared.ErrVideoPrivate, err)
	case errors.Is(err, errs.ErrAgeRestricted):
		return fmt.Errorf("%w: %v", shared.ErrAgeRestricted, err)
	case errors.Is(err, errs.ErrGeoBlocked):
		return fmt.Errorf("%w: %v", shared.ErrGeoRestricted, err)
	case errors.Is(err, errs.ErrRateLimited):
		return fmt.Errorf("%w: %v", shared.ErrRateLimited, err)
	case errors.Is(err, errs.ErrCipherFailed):
		return fmt.Errorf("%w: %v", shared.ErrEngineFailure, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %v", shared.ErrEngineFailure, err)
	}
}
