package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"researchagent/internal/models"
	"researchagent/internal/store"
)

// maxTopicLen is the longest accepted research topic, in characters.
const maxTopicLen = 200

var validID = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Handler holds the research HTTP handlers.
type Handler struct {
	jobs    JobStore
	files   FileStore
	archive Archive
	runner  *Runner
	log     *logrus.Logger
}

func NewHandler(jobs JobStore, files FileStore, archive Archive, runner *Runner, log *logrus.Logger) *Handler {
	return &Handler{jobs: jobs, files: files, archive: archive, runner: runner, log: log}
}

// Routes mounts the research endpoints on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/research", h.Create)
	r.Get("/research", h.List)
	r.Get("/research/{id}", h.Status)
	r.Get("/download/{id}", h.Download)
}

// Create accepts a topic, registers a new job, and starts the research
// pipeline in the background.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}
	if len([]rune(topic)) > maxTopicLen {
		writeError(w, http.StatusBadRequest, "Topic too long (max 200 characters)")
		return
	}

	id := uuid.NewString()
	job := &models.Job{
		ID:        id,
		Status:    models.StatusInitializing,
		Topic:     topic,
		Message:   "Initializing research...",
		Timestamp: time.Now(),
	}
	if err := h.jobs.Save(r.Context(), job); err != nil {
		h.log.WithError(err).Error("save new job failed")
		writeError(w, http.StatusInternalServerError, "Failed to start research")
		return
	}

	go h.runner.Run(id, topic)

	h.log.WithFields(logrus.Fields{"job_id": id, "topic": topic}).Info("research started")
	writeJSON(w, http.StatusOK, models.CreateResponse{
		ResultID: id,
		Status:   models.StatusInitializing,
		Message:  "Research started successfully!",
	})
}

// Status returns the current state of a job. Completed jobs whose live state
// has expired from the job store are served from the archive.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID.MatchString(id) {
		writeError(w, http.StatusBadRequest, "Invalid research ID")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if job := h.archivedJob(r.Context(), id); job != nil {
				writeJSON(w, http.StatusOK, job)
				return
			}
			writeError(w, http.StatusNotFound, "Research not found")
			return
		}
		h.log.WithError(err).WithField("job_id", id).Error("job lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Download streams the completed presentation as a markdown attachment. Jobs
// expired from the job store fall back to the archived markdown.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID.MatchString(id) {
		writeError(w, http.StatusBadRequest, "Invalid research ID")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			job = h.archivedJob(r.Context(), id)
		}
		if job == nil {
			writeError(w, http.StatusBadRequest, "Research not completed")
			return
		}
	}
	if job.Status != models.StatusCompleted {
		writeError(w, http.StatusBadRequest, "Research not completed")
		return
	}

	data := []byte(job.Presentation)
	ct := "text/markdown"
	if job.Filename != "" {
		data, ct, err = h.files.Download(r.Context(), job.Filename)
		if err != nil {
			h.log.WithError(err).WithField("job_id", id).Error("presentation download failed")
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
	}

	name := fmt.Sprintf("research_%s.md", safeFilename(job.Topic))
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// archivedJob rebuilds a completed job from the archive after its live state
// has been evicted from the job store. Returns nil when there is no archive
// or no archived report for the id.
func (h *Handler) archivedJob(ctx context.Context, id string) *models.Job {
	if h.archive == nil {
		return nil
	}
	doc, err := h.archive.GetByJobID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.WithError(err).WithField("job_id", id).Warn("archive lookup failed")
		}
		return nil
	}
	return &models.Job{
		ID:           id,
		Status:       models.StatusCompleted,
		Topic:        doc.Topic,
		Message:      "Research completed!",
		Presentation: doc.Markdown,
		HTMLContent:  doc.HTML,
		Timestamp:    doc.CreatedAt,
	}
}

// List returns the archived reports, or an empty list when no archive is
// configured.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusOK, []models.Document{})
		return
	}
	docs, err := h.archive.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("archive list failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// safeFilename keeps letters, digits, spaces, dashes, and underscores from a
// topic so it can be used in a download filename. Letters and digits from any
// script are kept.
func safeFilename(topic string) string {
	var b strings.Builder
	for _, r := range topic {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
