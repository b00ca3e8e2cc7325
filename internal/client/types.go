package client

import (
	"fmt"
	"strings"

	"researchagent/internal/models"
)

// MaxTopicLen is the longest accepted research topic, in characters.
const MaxTopicLen = 200

// Validation failure reasons.
const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"
)

// ValidationError reports a topic rejected before any request is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "topic is empty"
	case ReasonTooLong:
		return fmt.Sprintf("topic exceeds %d characters", MaxTopicLen)
	}
	return "invalid topic"
}

// UserMessage is the alert text shown for the validation failure.
func (e *ValidationError) UserMessage() string {
	switch e.Reason {
	case ReasonEmpty:
		return "Please enter a research topic"
	case ReasonTooLong:
		return "Topic too long (max 200 characters)"
	}
	return "Invalid topic"
}

// ValidateTopic trims the raw input and checks the length bounds. It returns
// the trimmed topic, or a *ValidationError.
func ValidateTopic(raw string) (string, error) {
	topic := strings.TrimSpace(raw)
	if topic == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}
	if len([]rune(topic)) > MaxTopicLen {
		return "", &ValidationError{Reason: ReasonTooLong}
	}
	return topic, nil
}

// StatusResponse is the body of GET /research/{id}.
type StatusResponse struct {
	Status      models.Status `json:"status"`
	Message     string        `json:"message,omitempty"`
	Topic       string        `json:"topic,omitempty"`
	HTMLContent string        `json:"html_content,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// progressPercent fixes the progress fill for each non-terminal-error status.
// An error status leaves the previous fill in place.
var progressPercent = map[models.Status]int{
	models.StatusInitializing: 10,
	models.StatusSearching:    40,
	models.StatusAnalyzing:    75,
	models.StatusCompleted:    100,
}

// ProgressPercent returns the progress fill for a status. ok is false when
// the status does not move the bar.
func ProgressPercent(s models.Status) (pct int, ok bool) {
	pct, ok = progressPercent[s]
	return pct, ok
}
