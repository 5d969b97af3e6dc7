// Package tasks orchestrates downloads end to end with real-time progress reporting.
//
// # Core Operations
//
// The [Orchestrator] exposes two operations:
//
//  1. [Orchestrator.Run] : Single-video download
//     - Delegates the fetch to the engine
//     - Re-encodes with ffmpeg when the delivered container differs from the
//       requested one, when conversion is forced, or for audio extraction
//     - Records the outcome in the history store
//     - Returns a result even on failure so callers can render and persist it
//
//  2. [Orchestrator.RunPlaylist] : Sequential playlist download
//     - Resolves the playlist into items via the engine
//     - Downloads each item into a per-playlist subdirectory
//     - Isolates item failures: one result per item, the run continues
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # History
//
// The optional [Recorder] interface enables automatic download persistence.
//
// Records are written best-effort (errors logged, not returned) to avoid failing a finished download on a bookkeeping problem.
//
// # Implementation
//
// [Orchestrator] depends on:
//   - [engine.Engine] : Metadata resolution and media fetch
//   - [convert.Converter] : ffmpeg-backed container conversion
//   - [Recorder] : Optional persistence layer (repositories.DownloadRepository)
package tasks
