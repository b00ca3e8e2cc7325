package research

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"researchagent/internal/models"
)

// JobStore persists job state while a research run is in flight.
type JobStore interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
}

// FileStore defines the interface for presentation file storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Archive persists completed reports. It is optional; a nil Archive disables
// archiving.
type Archive interface {
	Insert(ctx context.Context, doc *models.Document) (string, error)
	List(ctx context.Context) ([]models.Document, error)
	GetByJobID(ctx context.Context, jobID string) (*models.Document, error)
}

// Runner executes the research pipeline for one job and records its progress
// in the job store.
type Runner struct {
	jobs    JobStore
	files   FileStore
	archive Archive
	agent   *Agent
	timeout time.Duration
	log     *logrus.Logger
}

func NewRunner(jobs JobStore, files FileStore, archive Archive, agent *Agent, log *logrus.Logger) *Runner {
	return &Runner{
		jobs:    jobs,
		files:   files,
		archive: archive,
		agent:   agent,
		timeout: 10 * time.Minute,
		log:     log,
	}
}

// Run drives a job from searching to a terminal status. It is meant to be
// called in its own goroutine; every outcome is written to the job store.
func (r *Runner) Run(id, topic string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.update(ctx, id, topic, models.StatusSearching, "Searching for reliable sources...")
	data, err := r.agent.Research(ctx, topic)
	if err != nil {
		r.fail(ctx, id, topic, err)
		return
	}

	r.update(ctx, id, topic, models.StatusAnalyzing, "Analyzing content with AI...")
	md := BuildPresentation(topic, data, time.Now())
	html, err := RenderHTML(md)
	if err != nil {
		r.fail(ctx, id, topic, err)
		return
	}

	filename := fmt.Sprintf("research_presentation_%s.md", id)
	if err := r.files.Upload(ctx, filename, []byte(md), "text/markdown"); err != nil {
		r.fail(ctx, id, topic, fmt.Errorf("store presentation: %w", err))
		return
	}

	if r.archive != nil {
		doc := &models.Document{
			JobID:    id,
			Topic:    topic,
			Markdown: md,
			HTML:     html,
			Sources:  data.Sources,
		}
		if _, err := r.archive.Insert(ctx, doc); err != nil {
			// Archiving is best-effort; the job still completes.
			r.log.WithError(err).WithField("job_id", id).Warn("archive insert failed")
		}
	}

	done := &models.Job{
		ID:           id,
		Status:       models.StatusCompleted,
		Topic:        topic,
		Message:      "Research completed!",
		Presentation: md,
		HTMLContent:  html,
		Filename:     filename,
		Timestamp:    time.Now(),
	}
	if err := r.jobs.Save(ctx, done); err != nil {
		r.log.WithError(err).WithField("job_id", id).Error("save completed job failed")
	}
}

func (r *Runner) update(ctx context.Context, id, topic string, status models.Status, message string) {
	job := &models.Job{
		ID:        id,
		Status:    status,
		Topic:     topic,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err := r.jobs.Save(ctx, job); err != nil {
		r.log.WithError(err).WithField("job_id", id).Error("save job progress failed")
	}
}

func (r *Runner) fail(ctx context.Context, id, topic string, cause error) {
	r.log.WithError(cause).WithField("job_id", id).Error("research failed")
	job := &models.Job{
		ID:        id,
		Status:    models.StatusError,
		Topic:     topic,
		Message:   "Research failed",
		Error:     cause.Error(),
		Timestamp: time.Now(),
	}
	if err := r.jobs.Save(ctx, job); err != nil {
		r.log.WithError(err).WithField("job_id", id).Error("save failed job failed")
	}
}
