package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QualityView ViewState = iota
	FormatView
	ConfirmView
	DownloadView
	ResultView
)

// Runner is the slice of the orchestrator the TUI needs.
type Runner interface {
	Run(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) (*models.DownloadResult, error)
	RunPlaylist(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) ([]*models.DownloadResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	runner Runner
	req    *models.DownloadRequest

	width  int
	height int

	qualityList  list.Model
	formatList   list.Model
	progressBar  progress.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate

	results []*models.DownloadResult
	err     error

	pickFormat bool

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model for the given request.
//
// pickQuality/pickFormat control whether the corresponding picker views run
// before the confirmation screen; the CLI sets them when the user omitted the
// flag and interactive mode is on.
func NewModel(ctx context.Context, runner Runner, req *models.DownloadRequest, pickQuality, pickFormat bool) *Model {
	m := &Model{
		ctx:         ctx,
		runner:      runner,
		req:         req,
		progressBar: progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}

	m.qualityList = list.New(qualityItems(), list.NewDefaultDelegate(), 0, 0)
	m.qualityList.Title = "Select quality"
	m.formatList = list.New(formatItems(), list.NewDefaultDelegate(), 0, 0)
	m.formatList.Title = "Select format"

	switch {
	case pickQuality:
		m.view = QualityView
	case pickFormat:
		m.view = FormatView
	default:
		m.view = ConfirmView
	}
	m.pickFormat = pickFormat
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.qualityList.SetSize(msg.Width-4, msg.Height-8)
		m.formatList.SetSize(msg.Width-4, msg.Height-8)
		m.progressBar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QualityView:
			return m.handleQualityKeys(msg)
		case FormatView:
			return m.handleFormatKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case downloadCompleteMsg:
		m.results = msg.results
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case QualityView:
		return m.renderPicker(m.qualityList)
	case FormatView:
		return m.renderPicker(m.formatList)
	case ConfirmView:
		return m.renderConfirm()
	case DownloadView:
		return m.renderDownload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Results returns the download results once the program exits.
func (m *Model) Results() ([]*models.DownloadResult, error) {
	return m.results, m.err
}

func (m *Model) handleQualityKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if item, ok := m.qualityList.SelectedItem().(qualityItem); ok {
			m.req.Quality = item.tier
		}
		if m.pickFormat {
			m.view = FormatView
		} else {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.qualityList, cmd = m.qualityList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QualityView
		return m, nil
	case "enter":
		if item, ok := m.formatList.SelectedItem().(formatItem); ok {
			m.req.Format = item.format
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.formatList, cmd = m.formatList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		return m, tea.Quit
	case "y", "enter":
		m.view = DownloadView
		return m, m.startDownload()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startDownload() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	ch := m.progressChan

	go func() {
		var results []*models.DownloadResult
		var err error
		if m.req.IsPlaylist {
			results, err = m.runner.RunPlaylist(m.ctx, m.req, ch)
		} else {
			var result *models.DownloadResult
			result, err = m.runner.Run(m.ctx, m.req, ch)
			if result != nil {
				results = []*models.DownloadResult{result}
			}
		}
		m.results = results
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressChan
	return func() tea.Msg {
		if ch == nil {
			return downloadCompleteMsg{results: m.results, err: m.err}
		}
		update, ok := <-ch
		if !ok {
			return downloadCompleteMsg{results: m.results, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPicker(l list.Model) string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", l.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start download?")
	target := "video"
	if m.req.IsPlaylist {
		target = "playlist"
	}
	info := fmt.Sprintf(
		"\nURL: %s\nType: %s\nQuality: %s\nFormat: %s\nOutput: %s\n",
		m.req.URL, target, m.req.Quality, m.req.Format, m.req.OutputDir,
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Downloading")

	var bar string
	if m.progress.Total > 0 {
		bar = m.progressBar.ViewAs(float64(m.progress.Step) / float64(m.progress.Total))
	} else {
		bar = m.progressBar.ViewAs(0)
	}

	var detail string
	if ev, ok := m.progress.Data.(models.ProgressEvent); ok && ev.ETASeconds >= 0 {
		detail = styles.help.Render(fmt.Sprintf("ETA %ds", ev.ETASeconds))
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", title, bar, m.progress.Message, detail)
}

func (m *Model) renderResult() string {
	if m.err != nil && len(m.results) == 0 {
		return styles.err.Render(fmt.Sprintf("Download failed: %v\n\nPress q to quit", m.err))
	}

	succeeded, failed := 0, 0
	for _, r := range m.results {
		if r.Succeeded {
			succeeded++
		} else {
			failed++
		}
	}

	var title string
	if failed == 0 {
		title = styles.ok.Render("✓ Download complete")
	} else if succeeded == 0 {
		title = styles.err.Render("✗ Download failed")
	} else {
		title = styles.warn.Render(fmt.Sprintf("Download finished: %d ok, %d failed", succeeded, failed))
	}

	var lines string
	for _, r := range m.results {
		if r.Succeeded {
			lines += fmt.Sprintf("\n  %s %s", styles.ok.Render("✓"), r.OutputPath)
		} else {
			lines += fmt.Sprintf("\n  %s %s: %s", styles.err.Render("✗"), r.Title, r.ErrorMessage)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, lines, helpView)
}
