package api

import (
	"context"
	"sync"
	"time"

	"github.com/mkersting/slidegrid/pkg/errors"
)

// Job statuses.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Output is one rendered file belonging to a job.
type Output struct {
	Name string `bson:"name" json:"name"`
	Data []byte `bson:"data" json:"-"`
}

// Job tracks one asynchronous conversion from submission to result.
type Job struct {
	ID        string    `bson:"_id" json:"id"`
	Status    string    `bson:"status" json:"status"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	Formats   []string  `bson:"formats" json:"formats"`
	Documents int       `bson:"documents" json:"documents"`
	Pages     int       `bson:"pages" json:"pages"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	Outputs   []Output  `bson:"outputs,omitempty" json:"-"`
}

// Store persists jobs. Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts or replaces a job.
	Put(ctx context.Context, job *Job) error

	// Get returns the job with the given ID, or a JOB_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Job, error)

	// Close releases resources held by the store.
	Close(ctx context.Context) error
}

// MemoryStore keeps jobs in process memory. Jobs are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Put(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }
