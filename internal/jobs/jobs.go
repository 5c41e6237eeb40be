// Package jobs runs report generation asynchronously: a bounded in-memory
// queue with a worker pool and a job store the API polls for status. Suitable
// for single-instance deployments; a broker-backed queue can implement the
// same interfaces later.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agewise-dev/agewise/internal/report"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RenderOptions captures how the finished report should be delivered.
type RenderOptions struct {
	// Table selects the table-format payload over the metadata payload.
	Table bool `json:"table"`
	// ResponseOnly skips the Excel file.
	ResponseOnly bool `json:"response_only"`
	// UseCache routes fetches through the cache layer.
	UseCache bool `json:"use_cache"`
}

// ReportJob is one queued report run.
type ReportJob struct {
	JobID   string        `json:"job_id"`
	Params  report.Params `json:"params"`
	Render  RenderOptions `json:"render"`
	Status  Status        `json:"status"`
	Created time.Time     `json:"created_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	// Result is the rendered response payload once the job completes.
	Result any `json:"result,omitempty"`
}

// Handler executes one report job and returns the response payload.
type Handler func(ctx context.Context, job *ReportJob) (any, error)

// Store tracks job state for status polling.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*ReportJob
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*ReportJob)}
}

// Save stores a copy of the job keyed by id.
func (s *Store) Save(job *ReportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.JobID] = &cp
}

// Get returns a copy of the job, or an error when the id is unknown.
func (s *Store) Get(jobID string) (*ReportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	cp := *job
	return &cp, nil
}

// Queue distributes report jobs to a fixed worker pool over a buffered
// channel. Enqueue blocks once the buffer fills.
type Queue struct {
	jobChan   chan *ReportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	store     *Store
	closed    bool
}

// NewQueue creates a queue whose buffer holds bufferSize pending jobs.
func NewQueue(bufferSize int, store *Store) *Queue {
	return &Queue{
		jobChan:   make(chan *ReportJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
	}
}

// Enqueue submits a job, assigning an id and pending status when missing.
func (q *Queue) Enqueue(ctx context.Context, job *ReportJob) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.Unlock()

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	if job.Created.IsZero() {
		job.Created = time.Now()
	}
	q.store.Save(job)

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start launches workers that run jobs through the handler until the context
// is cancelled or the queue stops.
func (q *Queue) Start(ctx context.Context, workers int, handler Handler) {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
}

func (q *Queue) worker(ctx context.Context, handler Handler) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.run(ctx, job, handler)
		}
	}
}

func (q *Queue) run(ctx context.Context, job *ReportJob, handler Handler) {
	now := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &now
	q.store.Save(job)

	result, err := handler(ctx, job)

	done := time.Now()
	job.CompletedAt = &done
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusCompleted
		job.Result = result
	}
	q.store.Save(job)
}

// Stop closes the queue and waits for in-flight jobs, bounded by the context.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
