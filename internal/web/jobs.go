package web

import (
	"sync"

	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/shared"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

// JobStatus tracks a download job through its lifecycle.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one browser-submitted download tracked across requests.
type Job struct {
	ID      string
	URL     string
	Quality string
	Format  string

	mu          sync.RWMutex
	status      JobStatus
	latest      tasks.ProgressUpdate
	results     []*models.DownloadResult
	errMessage  string
	subscribers map[chan tasks.ProgressUpdate]struct{}
	done        chan struct{}
}

func newJob(url, quality, format string) *Job {
	return &Job{
		ID:          shared.GenerateID(),
		URL:         url,
		Quality:     quality,
		Format:      format,
		status:      JobQueued,
		subscribers: make(map[chan tasks.ProgressUpdate]struct{}),
		done:        make(chan struct{}),
	}
}

// Status returns the job's current lifecycle state.
func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Latest returns the most recent progress update.
func (j *Job) Latest() tasks.ProgressUpdate {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}

// Results returns the finished results, one per downloaded item.
func (j *Job) Results() []*models.DownloadResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.results
}

// ErrMessage returns the terminal error, empty unless the job failed.
func (j *Job) ErrMessage() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.errMessage
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// Subscribe registers a progress listener. The returned cancel function must
// be called when the listener disconnects.
func (j *Job) Subscribe() (<-chan tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 64)
	j.mu.Lock()
	j.subscribers[ch] = struct{}{}
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		delete(j.subscribers, ch)
		j.mu.Unlock()
	}
	return ch, cancel
}

// publish stores the update and fans it out without blocking on slow listeners.
func (j *Job) publish(update tasks.ProgressUpdate) {
	j.mu.Lock()
	j.latest = update
	for ch := range j.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
	j.mu.Unlock()
}

func (j *Job) start() {
	j.mu.Lock()
	j.status = JobRunning
	j.mu.Unlock()
}

func (j *Job) finish(results []*models.DownloadResult, err error) {
	j.mu.Lock()
	j.results = results
	if err != nil {
		j.status = JobFailed
		j.errMessage = err.Error()
	} else {
		j.status = JobDone
	}
	j.mu.Unlock()
	close(j.done)
}

// jobRegistry is an in-memory store of jobs keyed by ID.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*Job)}
}

func (r *jobRegistry) add(job *Job) {
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
}

func (r *jobRegistry) get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}
