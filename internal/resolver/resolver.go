// package resolver maps user-facing download choices into a concrete
// [models.DownloadRequest] consumable by the download engine.
//
// Resolution is purely local: URL variants are normalized into a canonical
// form, quality tiers are translated into the engine's format-selection
// syntax, and the output directory is created. No network call is made, so
// every failure here is a validation error.
package resolver

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/shared"
)

// Input is the raw user input collected by a presentation layer.
type Input struct {
	URL          string
	Quality      string
	Format       string
	OutputDir    string
	Filename     string
	Playlist     bool
	ForceConvert bool
	Force        bool // skip URL validation, pass the URL through untouched
}

var (
	videoIDRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	playlistIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// youtubeHosts are the host variants normalized to www.youtube.com.
var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// Resolve validates raw input and produces an immutable DownloadRequest.
//
// Returns a validation error (see [shared.IsValidation]) for malformed URLs,
// unknown quality/format values, or an unusable output directory.
func Resolve(in Input) (*models.DownloadRequest, error) {
	quality, err := models.ParseQualityTier(in.Quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	format, err := models.ParseOutputFormat(in.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	req := &models.DownloadRequest{
		Quality:      quality,
		Format:       format,
		IsPlaylist:   in.Playlist,
		ForceConvert: in.ForceConvert,
	}

	rawURL := strings.TrimSpace(in.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL cannot be empty", shared.ErrInvalidURL)
	}

	if in.Force {
		req.URL = rawURL
	} else {
		canonical, err := CanonicalURL(rawURL)
		if err != nil {
			return nil, err
		}
		req.URL = canonical.URL
		req.VideoID = canonical.VideoID
		req.PlaylistID = canonical.PlaylistID

		// A bare playlist link is always a playlist download.
		if canonical.VideoID == "" && canonical.PlaylistID != "" {
			req.IsPlaylist = true
		}
		if req.IsPlaylist && canonical.PlaylistID != "" {
			req.URL = playlistURL(canonical.PlaylistID)
		}
	}

	dir := in.OutputDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDirectory, err)
		}
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidDirectory, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDirectory, err)
	}
	req.OutputDir = dir

	if in.Filename != "" {
		name := in.Filename
		if ext := filepath.Ext(name); ext != "" {
			name = strings.TrimSuffix(name, ext)
		}
		req.Filename = shared.SanitizeFilename(name)
	}

	return req, nil
}

// Canonical is the normalized form of a video/playlist reference,
// stripped of tracking parameters.
type Canonical struct {
	URL        string
	VideoID    string
	PlaylistID string
}

// CanonicalURL normalizes the supported URL variants (watch, youtu.be,
// shorts, embed, live, playlist, channel and handle links, and the
// music./m. host variants) into a form accepted by the engine.
func CanonicalURL(rawURL string) (*Canonical, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: URL cannot be empty", shared.ErrInvalidURL)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}

	host := strings.ToLower(u.Hostname())
	query := u.Query()

	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if !videoIDRe.MatchString(id) {
			return nil, fmt.Errorf("%w: no video ID in %s", shared.ErrInvalidURL, rawURL)
		}
		return canonicalWatch(id, query.Get("list"))
	}

	if !youtubeHosts[host] {
		return nil, fmt.Errorf("%w: unsupported host %q", shared.ErrInvalidURL, host)
	}

	path := strings.Trim(u.Path, "/")
	segments := strings.Split(path, "/")

	switch {
	case path == "watch":
		id := query.Get("v")
		if !videoIDRe.MatchString(id) {
			return nil, fmt.Errorf("%w: missing or malformed v parameter", shared.ErrInvalidURL)
		}
		return canonicalWatch(id, query.Get("list"))

	case path == "playlist":
		list := query.Get("list")
		if !playlistIDRe.MatchString(list) {
			return nil, fmt.Errorf("%w: missing or malformed list parameter", shared.ErrInvalidURL)
		}
		return &Canonical{URL: playlistURL(list), PlaylistID: list}, nil

	case len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "embed" || segments[0] == "live"):
		id := segments[1]
		if !videoIDRe.MatchString(id) {
			return nil, fmt.Errorf("%w: no video ID in %s", shared.ErrInvalidURL, rawURL)
		}
		return canonicalWatch(id, query.Get("list"))

	case len(segments) == 2 && (segments[0] == "channel" || segments[0] == "c"):
		return &Canonical{URL: "https://www.youtube.com/" + segments[0] + "/" + segments[1]}, nil

	case len(segments) >= 1 && strings.HasPrefix(segments[0], "@") && len(segments[0]) > 1:
		return &Canonical{URL: "https://www.youtube.com/" + segments[0]}, nil
	}

	return nil, fmt.Errorf("%w: unrecognized URL form %q", shared.ErrInvalidURL, rawURL)
}

func canonicalWatch(videoID, listID string) (*Canonical, error) {
	c := &Canonical{
		URL:     "https://www.youtube.com/watch?v=" + videoID,
		VideoID: videoID,
	}
	if listID != "" && playlistIDRe.MatchString(listID) {
		c.PlaylistID = listID
	}
	return c, nil
}

func playlistURL(listID string) string {
	return "https://www.youtube.com/playlist?list=" + listID
}

// FormatSelector translates a request's quality tier and container preference
// into the engine's format-selection syntax.
//
// When not force-converting, the requested container is passed as an
// extension hint so the engine prefers a matching progressive stream; the
// engine falls back to the best available format when none matches. When
// force-converting, the hint is omitted since any container will be
// re-encoded anyway.
func FormatSelector(req *models.DownloadRequest) (selector, desiredExt string) {
	if req.Quality == models.QualityAudio {
		// itag 140 is the m4a audio-only stream; it is extracted to mp3 downstream.
		return "itag=140", "m4a"
	}

	if h := req.Quality.MaxHeight(); h > 0 {
		selector = fmt.Sprintf("height<=%d", h)
	} else {
		selector = "best"
	}

	if !req.ForceConvert {
		desiredExt = req.Format.Ext()
	}
	return selector, desiredExt
}
