package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"researchagent/internal/models"
)

// ErrNotFound is returned when a job id has no stored state.
var ErrNotFound = errors.New("research not found")

const jobKeyPrefix = "research:"

// RedisJobStore keeps job state in Redis, one JSON value per job with a TTL.
type RedisJobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisJobStore connects to Redis with optional password auth and pings it.
func NewRedisJobStore(ctx context.Context, addr, password string, ttl time.Duration) (*RedisJobStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisJobStore{rdb: rdb, ttl: ttl}, nil
}

// Save overwrites the stored state for the job and refreshes its TTL.
func (s *RedisJobStore) Save(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return s.rdb.Set(ctx, jobKeyPrefix+job.ID, data, s.ttl).Err()
}

// Get returns the stored state for the job id, or ErrNotFound.
func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	val, err := s.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *RedisJobStore) Close() error {
	return s.rdb.Close()
}
