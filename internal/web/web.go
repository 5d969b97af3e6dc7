// Package web implements the browser front-end for submitting downloads.
//
// The app is server-rendered with html/template. Submitting the form creates
// a job, runs it on a background goroutine, and the progress page consumes a
// Server-Sent Events stream until the job reaches a terminal state:
//
//	GET  /                      → Submission form
//	POST /downloads             → Create job, redirect to its progress page
//	GET  /downloads/{id}        → Progress view, or results once finished
//	GET  /downloads/{id}/events → SSE progress stream
//
// Jobs live in an in-memory registry keyed by UUID; nothing survives a
// restart except the history rows the orchestrator writes.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/resolver"
	"github.com/AliEhsanian/ytgrab/internal/server"
	"github.com/AliEhsanian/ytgrab/internal/shared"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

// DownloadRunner is the slice of the orchestrator the web app needs.
type DownloadRunner interface {
	Run(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) (*models.DownloadResult, error)
	RunPlaylist(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) ([]*models.DownloadResult, error)
}

// App is the web application.
type App struct {
	runner    DownloadRunner
	config    *shared.Config
	logger    *log.Logger
	registry  *jobRegistry
	templates *template.Template
}

// NewApp wires the web app. config and logger fall back to defaults when nil.
func NewApp(runner DownloadRunner, config *shared.Config, logger *log.Logger) (*App, error) {
	if config == nil {
		config = shared.DefaultConfig()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &App{
		runner:    runner,
		config:    config,
		logger:    logger,
		registry:  newJobRegistry(),
		templates: templates,
	}, nil
}

// Handler builds the full middleware-wrapped handler for the app.
func (a *App) Handler() http.Handler {
	router := server.NewBasicRouter()
	router.Use(
		server.Logging(a.logger),
		server.RateLimit(a.config.Server.RateLimitRPS),
	)

	router.Handle("GET", "/{$}", http.HandlerFunc(a.handleIndex))
	router.Handle("POST", "/downloads", http.HandlerFunc(a.handleSubmit))
	router.Handle("GET", "/downloads/{id}", http.HandlerFunc(a.handleJob))
	router.Handle("GET", "/downloads/{id}/events", http.HandlerFunc(a.handleEvents))

	return router
}

type indexData struct {
	Error          string
	URL            string
	Quality        string
	Format         string
	Playlist       bool
	ForceConvert   bool
	DefaultQuality string
	DefaultFormat  string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.render(w, "index.html", indexData{
		DefaultQuality: a.config.Defaults.Quality,
		DefaultFormat:  a.config.Defaults.Format,
	})
}

func (a *App) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form", http.StatusBadRequest)
		return
	}

	input := resolver.Input{
		URL:          r.FormValue("url"),
		Quality:      r.FormValue("quality"),
		Format:       r.FormValue("format"),
		OutputDir:    a.config.Output.Directory,
		Playlist:     r.FormValue("playlist") != "",
		ForceConvert: r.FormValue("force_convert") != "",
	}

	req, err := resolver.Resolve(input)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		a.render(w, "index.html", indexData{
			Error:          err.Error(),
			URL:            input.URL,
			Quality:        input.Quality,
			Format:         input.Format,
			Playlist:       input.Playlist,
			ForceConvert:   input.ForceConvert,
			DefaultQuality: a.config.Defaults.Quality,
			DefaultFormat:  a.config.Defaults.Format,
		})
		return
	}

	job := newJob(req.URL, req.Quality.String(), req.Format.Ext())
	a.registry.add(job)
	go a.runJob(job, req)

	http.Redirect(w, r, "/downloads/"+job.ID, http.StatusSeeOther)
}

// runJob drives the orchestrator on a background goroutine, fanning progress
// out to SSE subscribers. The job deliberately outlives the submitting
// request, so it runs on its own context.
func (a *App) runJob(job *Job, req *models.DownloadRequest) {
	job.start()

	progress := make(chan tasks.ProgressUpdate, 64)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		for update := range progress {
			job.publish(update)
		}
	}()

	var results []*models.DownloadResult
	var err error
	if req.IsPlaylist {
		results, err = a.runner.RunPlaylist(context.Background(), req, progress)
	} else {
		var result *models.DownloadResult
		result, err = a.runner.Run(context.Background(), req, progress)
		if result != nil {
			results = []*models.DownloadResult{result}
		}
	}

	close(progress)
	<-relayDone

	if err != nil {
		a.logger.Error("job failed", "job_id", job.ID, "url", job.URL, "err", err)
	}
	job.finish(results, err)
}

type jobData struct {
	Job       *Job
	Results   []*models.DownloadResult
	Succeeded int
	Failed    int
	Hint      string
}

func (a *App) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.registry.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch job.Status() {
	case JobDone, JobFailed:
		data := jobData{Job: job, Results: job.Results()}
		for _, res := range job.Results() {
			if res.Succeeded {
				data.Succeeded++
			} else {
				data.Failed++
			}
		}
		a.render(w, "result.html", data)
	default:
		a.render(w, "progress.html", jobData{Job: job})
	}
}

func (a *App) handleEvents(w http.ResponseWriter, r *http.Request) {
	job, ok := a.registry.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, cancel := job.Subscribe()
	defer cancel()

	// Late subscribers get the latest known state immediately.
	if latest := job.Latest(); latest.Message != "" {
		a.writeEvent(w, "progress", latest)
		flusher.Flush()
	}

	for {
		select {
		case update := <-updates:
			a.writeEvent(w, "progress", update)
			flusher.Flush()
		case <-job.Done():
			a.writeEvent(w, "done", map[string]string{"redirect": "/downloads/" + job.ID})
			flusher.Flush()
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (a *App) writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := shared.MarshalJSON(payload, false)
	if err != nil {
		a.logger.Error("failed to marshal SSE payload", "err", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func (a *App) render(w http.ResponseWriter, name string, data any) {
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template render failed", "template", name, "err", err)
	}
}
