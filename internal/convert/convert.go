// package convert re-encodes downloaded media into the requested container
// with ffmpeg.
//
// Conversion is synchronous and context-driven: cancelling the context kills
// the ffmpeg process and removes the partial output. Progress is derived from
// ffmpeg's machine-readable progress stream measured against the input's
// duration from ffprobe.
package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AliEhsanian/ytgrab/internal/shared"
)

const (
	progressPipeTarget = "pipe:2"
	progressTimePrefix = "out_time_us="

	ffprobeLogLevel     = "error"
	ffprobeShowEntries  = "format=duration"
	ffprobeOutputFormat = "csv=p=0"
)

// Converter re-encodes a media file. The output container is inferred from
// the output path's extension.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string, onProgress func(percent float64)) error
}

// FFmpeg shells out to the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath   string
	FFprobePath  string
	AudioBitrate string // for audio extraction, e.g. "192k"
}

// New returns an ffmpeg-backed converter using the given binary paths.
// Empty paths fall back to resolving "ffmpeg"/"ffprobe" on PATH.
func New(ffmpegPath, ffprobePath, audioBitrate string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if audioBitrate == "" {
		audioBitrate = "192k"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, AudioBitrate: audioBitrate}
}

// Available reports whether the ffmpeg binary can be found.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.FFmpegPath)
	return err == nil
}

// Convert re-encodes inputPath into outputPath. A failed or cancelled run
// leaves no partial output behind.
func (f *FFmpeg) Convert(ctx context.Context, inputPath, outputPath string, onProgress func(percent float64)) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("%w: input %s: %v", shared.ErrConversionFailed, inputPath, err)
	}

	args, err := buildArgs(inputPath, outputPath, f.AudioBitrate)
	if err != nil {
		return err
	}

	// Duration is only needed to scale progress; conversion proceeds without it.
	duration, probeErr := f.probeDuration(inputPath)
	if probeErr != nil {
		duration = 0
	}

	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: stderr pipe: %v", shared.ErrConversionFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start ffmpeg: %v", shared.ErrConversionFailed, err)
	}

	monitorProgress(stderr, duration, onProgress)

	if err := cmd.Wait(); err != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", shared.ErrConversionFailed, ctx.Err())
		}
		return fmt.Errorf("%w: %v", shared.ErrConversionFailed, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

// probeDuration returns the input's duration in seconds via ffprobe.
func (f *FFmpeg) probeDuration(path string) (float64, error) {
	cmd := exec.Command(f.FFprobePath, "-v", ffprobeLogLevel, "-show_entries", ffprobeShowEntries, "-of", ffprobeOutputFormat, path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

// buildArgs assembles the ffmpeg invocation for the container implied by
// outputPath's extension.
func buildArgs(inputPath, outputPath, audioBitrate string) ([]string, error) {
	args := []string{"-y", "-i", inputPath}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".mp4":
		args = append(args,
			"-c:v", "libx264", "-preset", "medium", "-crf", "23",
			"-c:a", "aac", "-b:a", "128k",
			"-movflags", "+faststart",
		)
	case ".webm":
		args = append(args,
			"-c:v", "libvpx-vp9", "-crf", "32", "-b:v", "0",
			"-c:a", "libopus",
		)
	case ".mkv":
		args = append(args,
			"-c:v", "libx264", "-preset", "medium", "-crf", "23",
			"-c:a", "aac", "-b:a", "128k",
		)
	case ".avi":
		args = append(args,
			"-c:v", "mpeg4", "-q:v", "4",
			"-c:a", "libmp3lame", "-b:a", "128k",
		)
	case ".mp3":
		args = append(args,
			"-vn",
			"-c:a", "libmp3lame", "-b:a", audioBitrate,
		)
	default:
		return nil, fmt.Errorf("%w: unsupported target container %q", shared.ErrConversionFailed, filepath.Ext(outputPath))
	}

	args = append(args, "-progress", progressPipeTarget, "-nostats", outputPath)
	return args, nil
}

// monitorProgress reads ffmpeg's progress stream and reports percent
// complete. With an unknown duration no samples are emitted.
func monitorProgress(stderr io.ReadCloser, totalDuration float64, onProgress func(float64)) {
	defer stderr.Close()
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		percent, ok := parseProgressLine(scanner.Text(), totalDuration)
		if ok && onProgress != nil {
			onProgress(percent)
		}
	}
}

// parseProgressLine extracts a completion percentage from one line of
// ffmpeg's -progress output (out_time_us=N).
func parseProgressLine(line string, totalDuration float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, progressTimePrefix) || totalDuration <= 0 {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, progressTimePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	percent := float64(us) / 1e6 / totalDuration * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}
