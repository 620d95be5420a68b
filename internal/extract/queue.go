package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/villemin/feuille/internal/apperr"
)

// Item statuses.
const (
	StatusWaiting   = "waiting"
	StatusAnalyzing = "analyzing"
	StatusSuccess   = "success"
	StatusError     = "error"
)

// Image is one uploaded image queued for analysis.
type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

// Item is the per-image record inside a job. Exactly one of Draft or Error
// is set once the item leaves the waiting/analyzing states.
type Item struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Draft    *Draft `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`

	image    []byte
	mimeType string
}

// Job is one extraction batch. Items are processed strictly in order, one
// at a time; a failed item never aborts the rest of the batch. A job in
// flight cannot be cancelled, matching the upload dialog's behavior.
type Job struct {
	ID        string          `json:"id"`
	Options   AnalysisOptions `json:"options"`
	Items     []Item          `json:"items"`
	Done      bool            `json:"done"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Queue runs extraction jobs on a single worker goroutine.
type Queue struct {
	analyzer Analyzer
	logger   *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job

	pending chan string
}

// NewQueue creates a queue backed by the given analyzer. Call Run to start
// the worker.
func NewQueue(analyzer Analyzer, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		analyzer: analyzer,
		logger:   logger,
		jobs:     make(map[string]*Job),
		pending:  make(chan string, 64),
	}
}

// Submit enqueues a new job and returns its id. Every item starts waiting.
func (q *Queue) Submit(images []Image, opts AnalysisOptions) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("extract: no images in batch: %w", apperr.ErrInvalid)
	}

	job := &Job{
		ID:        "job_" + uuid.NewString(),
		Options:   opts,
		CreatedAt: time.Now().UTC(),
	}
	for _, img := range images {
		job.Items = append(job.Items, Item{
			ID:       "item_" + uuid.NewString(),
			Filename: img.Filename,
			Status:   StatusWaiting,
			image:    img.Data,
			mimeType: img.MimeType,
		})
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.mu.Unlock()

	select {
	case q.pending <- job.ID:
	default:
		q.mu.Lock()
		delete(q.jobs, job.ID)
		q.mu.Unlock()
		return "", fmt.Errorf("extract: queue is full")
	}

	return job.ID, nil
}

// Snapshot returns a copy of the job's current state for progress polling.
func (q *Queue) Snapshot(jobID string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return q.copyLocked(job), true
}

// Run processes jobs until ctx is cancelled. One job at a time, one image
// at a time: the remote collaborator is never called concurrently. Context
// cancellation is honored between items only; the current item finishes.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case jobID := <-q.pending:
			q.process(ctx, jobID)
		}
	}
}

func (q *Queue) process(ctx context.Context, jobID string) {
	q.mu.Lock()
	job, ok := q.jobs[jobID]
	if !ok {
		q.mu.Unlock()
		return
	}
	n := len(job.Items)
	q.mu.Unlock()

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			q.finish(jobID)
			return
		}

		q.setStatus(jobID, i, StatusAnalyzing)

		q.mu.Lock()
		image := job.Items[i].image
		mimeType := job.Items[i].mimeType
		opts := job.Options
		filename := job.Items[i].Filename
		q.mu.Unlock()

		draft, err := q.analyzer.AnalyzeImage(ctx, image, mimeType, opts)
		if err != nil {
			q.logger.Warn("extract: item failed",
				slog.String("job_id", jobID),
				slog.String("filename", filename),
				slog.String("error", err.Error()))
			q.setError(jobID, i, err.Error())
			continue
		}
		q.setResult(jobID, i, draft)
	}

	q.finish(jobID)
}

func (q *Queue) setStatus(jobID string, i int, status string) {
	q.mu.Lock()
	if job, ok := q.jobs[jobID]; ok && i < len(job.Items) {
		job.Items[i].Status = status
	}
	q.mu.Unlock()
}

func (q *Queue) setResult(jobID string, i int, draft Draft) {
	q.mu.Lock()
	if job, ok := q.jobs[jobID]; ok && i < len(job.Items) {
		job.Items[i].Status = StatusSuccess
		job.Items[i].Draft = &draft
		job.Items[i].image = nil
	}
	q.mu.Unlock()
}

func (q *Queue) setError(jobID string, i int, msg string) {
	q.mu.Lock()
	if job, ok := q.jobs[jobID]; ok && i < len(job.Items) {
		job.Items[i].Status = StatusError
		job.Items[i].Error = msg
		job.Items[i].image = nil
	}
	q.mu.Unlock()
}

func (q *Queue) finish(jobID string) {
	q.mu.Lock()
	if job, ok := q.jobs[jobID]; ok {
		job.Done = true
	}
	q.mu.Unlock()
}

func (q *Queue) copyLocked(job *Job) Job {
	out := *job
	out.Items = make([]Item, len(job.Items))
	for i, it := range job.Items {
		copied := it
		copied.image = nil
		if it.Draft != nil {
			d := *it.Draft
			copied.Draft = &d
		}
		out.Items[i] = copied
	}
	return out
}
