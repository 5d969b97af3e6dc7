package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors - reported before any engine call
	ErrInvalidURL      = fmt.Errorf("invalid or unsupported URL")
	ErrInvalidDirectory = fmt.Errorf("invalid output directory")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Download errors - reported per request or per playlist item
	ErrVideoUnavailable = fmt.Errorf("video unavailable")
	ErrVideoPrivate     = fmt.Errorf("video is private")
	ErrAgeRestricted    = fmt.Errorf("video is age restricted")
	ErrGeoRestricted    = fmt.Errorf("video is not available in your region")
	ErrRateLimited      = fmt.Errorf("rate limited by the remote service")
	ErrNetwork          = fmt.Errorf("network error")
	ErrEngineFailure    = fmt.Errorf("download engine failed")
	ErrConversionFailed = fmt.Errorf("format conversion failed")
)

// validationErrors are rejected before the orchestrator touches the network.
var validationErrors = []error{
	ErrInvalidURL,
	ErrInvalidDirectory,
	ErrInvalidFlag,
	ErrMissingArgument,
	ErrInvalidArgument,
	ErrInvalidConfig,
	ErrMissingConfig,
}

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Remediation returns a user-facing hint for a categorized download error,
// or an empty string when no specific advice applies.
func Remediation(err error) string {
	switch {
	case errors.Is(err, ErrVideoUnavailable):
		return "check that the video still exists and is public"
	case errors.Is(err, ErrVideoPrivate):
		return "the video is private and cannot be downloaded"
	case errors.Is(err, ErrAgeRestricted):
		return "age-restricted videos cannot be downloaded anonymously"
	case errors.Is(err, ErrGeoRestricted):
		return "check if the video is available in your region"
	case errors.Is(err, ErrRateLimited):
		return "wait a few minutes before retrying"
	case errors.Is(err, ErrNetwork):
		return "check your internet connection and retry"
	case errors.Is(err, ErrEngineFailure):
		return "try a different quality setting"
	case errors.Is(err, ErrConversionFailed):
		return "verify ffmpeg is installed, or retry with --force-convert disabled"
	default:
		return ""
	}
}
