package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/shared"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

// fakeRunner completes instantly with canned results.
type fakeRunner struct {
	result *models.DownloadResult
	err    error
	block  chan struct{} // when non-nil, Run waits until closed
}

func (f *fakeRunner) Run(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) (*models.DownloadResult, error) {
	if f.block != nil {
		<-f.block
	}
	if progress != nil {
		select {
		case progress <- tasks.ProgressUpdate{Phase: tasks.Download, Step: 50, Total: 100, Message: "Downloading... 50%"}:
		default:
		}
	}
	return f.result, f.err
}

func (f *fakeRunner) RunPlaylist(ctx context.Context, req *models.DownloadRequest, progress chan<- tasks.ProgressUpdate) ([]*models.DownloadResult, error) {
	if f.result != nil {
		return []*models.DownloadResult{f.result}, f.err
	}
	return nil, f.err
}

func newTestApp(t *testing.T, runner DownloadRunner) *App {
	t.Helper()
	config := shared.DefaultConfig()
	config.Output.Directory = t.TempDir()
	config.Server.RateLimitRPS = 0

	app, err := NewApp(runner, config, shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	return app
}

func submitForm(t *testing.T, handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/downloads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func waitForJob(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish in time")
	}
}

func TestIndex(t *testing.T) {
	app := newTestApp(t, &fakeRunner{})
	handler := app.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "form") {
		t.Error("index should render the submission form")
	}
}

func TestSubmit(t *testing.T) {
	t.Run("ValidURLRedirects", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{
			result: &models.DownloadResult{OutputPath: "/out/v.mp4", Title: "Video", Succeeded: true},
		})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url":     {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			"quality": {"1080p"},
			"format":  {"mp4"},
		})

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
		}

		location := rec.Header().Get("Location")
		if !strings.HasPrefix(location, "/downloads/") {
			t.Fatalf("expected redirect to job page, got %q", location)
		}

		id := strings.TrimPrefix(location, "/downloads/")
		job, ok := app.registry.get(id)
		if !ok {
			t.Fatal("job should be registered")
		}
		waitForJob(t, job)

		if job.Status() != JobDone {
			t.Errorf("expected done job, got %s", job.Status())
		}
	})

	t.Run("InvalidURLRendersError", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url": {"https://vimeo.com/12345"},
		})

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "unsupported host") {
			t.Error("response should explain the validation failure")
		}
	})

	t.Run("InvalidQualityRendersError", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url":     {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			"quality": {"480p"},
		})

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

func TestJobPage(t *testing.T) {
	t.Run("RunningShowsProgress", func(t *testing.T) {
		block := make(chan struct{})
		app := newTestApp(t, &fakeRunner{
			result: &models.DownloadResult{Succeeded: true, Title: "Video"},
			block:  block,
		})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		})
		location := rec.Header().Get("Location")

		pageRec := httptest.NewRecorder()
		handler.ServeHTTP(pageRec, httptest.NewRequest("GET", location, nil))
		if pageRec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", pageRec.Code)
		}
		if !strings.Contains(pageRec.Body.String(), "EventSource") {
			t.Error("running job should render the progress page")
		}

		close(block)
		id := strings.TrimPrefix(location, "/downloads/")
		job, _ := app.registry.get(id)
		waitForJob(t, job)
	})

	t.Run("FinishedShowsResults", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{
			result: &models.DownloadResult{OutputPath: "/out/v.mp4", Title: "Video", Succeeded: true},
		})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		})
		location := rec.Header().Get("Location")
		id := strings.TrimPrefix(location, "/downloads/")
		job, _ := app.registry.get(id)
		waitForJob(t, job)

		pageRec := httptest.NewRecorder()
		handler.ServeHTTP(pageRec, httptest.NewRequest("GET", location, nil))
		if !strings.Contains(pageRec.Body.String(), "Download complete") {
			t.Errorf("finished job should render results, got: %s", pageRec.Body.String())
		}
		if !strings.Contains(pageRec.Body.String(), "/out/v.mp4") {
			t.Error("results should list output paths")
		}
	})

	t.Run("FailedShowsError", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{
			result: &models.DownloadResult{Succeeded: false, ErrorMessage: "video unavailable: gone"},
			err:    fmt.Errorf("video unavailable: gone"),
		})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		})
		location := rec.Header().Get("Location")
		id := strings.TrimPrefix(location, "/downloads/")
		job, _ := app.registry.get(id)
		waitForJob(t, job)

		pageRec := httptest.NewRecorder()
		handler.ServeHTTP(pageRec, httptest.NewRequest("GET", location, nil))
		if !strings.Contains(pageRec.Body.String(), "Download failed") {
			t.Error("failed job should render the failure page")
		}
		if !strings.Contains(pageRec.Body.String(), "video unavailable") {
			t.Error("failure page should show the error message")
		}
	})

	t.Run("UnknownJob", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{})
		handler := app.Handler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/downloads/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestEvents(t *testing.T) {
	t.Run("FinishedJobSendsDone", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{
			result: &models.DownloadResult{Succeeded: true, Title: "Video"},
		})
		handler := app.Handler()

		rec := submitForm(t, handler, url.Values{
			"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		})
		location := rec.Header().Get("Location")
		id := strings.TrimPrefix(location, "/downloads/")
		job, _ := app.registry.get(id)
		waitForJob(t, job)

		eventsRec := httptest.NewRecorder()
		handler.ServeHTTP(eventsRec, httptest.NewRequest("GET", location+"/events", nil))

		body := eventsRec.Body.String()
		if !strings.Contains(body, "event: done") {
			t.Errorf("expected a done event, got: %s", body)
		}
		if !strings.Contains(body, "/downloads/"+id) {
			t.Error("done event should carry the redirect target")
		}
		if ct := eventsRec.Header().Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("expected SSE content type, got %q", ct)
		}
	})

	t.Run("UnknownJob", func(t *testing.T) {
		app := newTestApp(t, &fakeRunner{})
		handler := app.Handler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/downloads/nope/events", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestJobSubscribe(t *testing.T) {
	job := newJob("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "best", "mp4")

	updates, cancel := job.Subscribe()
	defer cancel()

	sent := tasks.ProgressUpdate{Phase: tasks.Download, Step: 42, Total: 100, Message: "Downloading... 42%"}
	job.publish(sent)

	select {
	case got := <-updates:
		if got.Step != 42 {
			t.Errorf("expected step 42, got %d", got.Step)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber should receive published updates")
	}

	if job.Latest().Message != sent.Message {
		t.Error("latest update should be retained for late subscribers")
	}
}
