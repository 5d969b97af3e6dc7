// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for a download:
//  1. [QualityView] : Pick a quality tier when no flag was given
//  2. [FormatView] : Pick an output container when no flag was given
//  3. [ConfirmView] : Review the request before starting
//  4. [DownloadView] : Monitor real-time progress with a progress bar
//  5. [ResultView] : Display per-item outcomes and error details
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the orchestrator, providing non-blocking status reporting during downloads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
