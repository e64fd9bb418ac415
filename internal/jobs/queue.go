package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/core"
)

// Queue is an in-memory job queue. Jobs live only for the process lifetime;
// there is no persistence, a restart drops queued and running work.
type Queue struct {
	mu      sync.RWMutex
	jobs    map[string]*core.Job
	pending chan string
	closed  bool
}

// NewQueue creates a queue that can hold up to capacity pending jobs.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		jobs:    make(map[string]*core.Job),
		pending: make(chan string, capacity),
	}
}

// Enqueue registers a new generation request and returns its job ID. It
// fails when the queue is full or closed rather than blocking the caller.
func (q *Queue) Enqueue(topic string, keywords []string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", fmt.Errorf("queue is closed")
	}

	now := time.Now().UTC()
	job := &core.Job{
		ID:        uuid.NewString(),
		Topic:     topic,
		Keywords:  keywords,
		Status:    core.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	select {
	case q.pending <- job.ID:
	default:
		return "", fmt.Errorf("queue is full (%d pending)", cap(q.pending))
	}

	q.jobs[job.ID] = job
	return job.ID, nil
}

// Get returns a copy of the job, or false when the ID is unknown.
func (q *Queue) Get(id string) (core.Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return core.Job{}, false
	}
	return *job, true
}

// List returns copies of all jobs, newest first.
func (q *Queue) List() []core.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]core.Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Close stops accepting new jobs and lets workers drain the backlog.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.pending)
	}
}

// markRunning transitions a job to running.
func (q *Queue) markRunning(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if job, ok := q.jobs[id]; ok {
		job.Status = core.JobRunning
		job.UpdatedAt = time.Now().UTC()
	}
}

// complete records a finished job: an outcome on success, an error message
// on failure.
func (q *Queue) complete(id string, outcome *core.IterationOutcome, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return
	}
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = core.JobFailed
		job.Error = err.Error()
		return
	}
	job.Status = core.JobCompleted
	job.Outcome = outcome
}
