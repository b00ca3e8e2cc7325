package store

import (
	"context"
	"sync"

	"researchagent/internal/models"
)

// MemoryJobStore keeps job state in a process-local map. It is the default
// backend when Redis is not configured, and the backend used in tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]models.Job)}
}

func (s *MemoryJobStore) Save(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}
