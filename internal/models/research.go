package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of a research job.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusSearching    Status = "searching"
	StatusAnalyzing    Status = "analyzing"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// Terminal reports whether the status ends the job lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Source is a web source cited in the report.
type Source struct {
	Title string `json:"title" bson:"title"`
	Body  string `json:"body"  bson:"body"`
	Href  string `json:"href"  bson:"href"`
}

// ResearchData is the structured analysis produced for a topic.
type ResearchData struct {
	KeyPoints          []string `json:"key_points"`
	RecentDevelopments []string `json:"recent_developments"`
	Challenges         []string `json:"challenges"`
	FutureOutlook      []string `json:"future_outlook"`
	Sources            []Source `json:"sources"`
}

// Job is the state of one research request, as returned by GET /research/{id}.
type Job struct {
	ID           string    `json:"result_id"`
	Status       Status    `json:"status"`
	Topic        string    `json:"topic,omitempty"`
	Message      string    `json:"message,omitempty"`
	Presentation string    `json:"presentation,omitempty"`
	HTMLContent  string    `json:"html_content,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Document is a completed research report kept in the archive.
type Document struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	JobID     string             `json:"job_id"     bson:"job_id"`
	Topic     string             `json:"topic"      bson:"topic"`
	Markdown  string             `json:"markdown"   bson:"markdown"`
	HTML      string             `json:"html"       bson:"html"`
	Sources   []Source           `json:"sources"    bson:"sources"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreateRequest is the JSON body for POST /research.
type CreateRequest struct {
	Topic string `json:"topic"`
}

// CreateResponse is the JSON body returned when a job is accepted.
type CreateResponse struct {
	ResultID string `json:"result_id"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
}
