package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agewise-dev/agewise/internal/report"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want Status) *ReportJob {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		job, err := store.Get(jobID)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s stuck in %s, want %s", jobID, job.Status, want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestQueue_RunsJobToCompletion(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Stop(context.Background())

	q.Start(context.Background(), 1, func(_ context.Context, job *ReportJob) (any, error) {
		return map[string]string{"report_date": job.Params.ReportDate}, nil
	})

	job := &ReportJob{Params: report.Params{ReportDate: "2025-08-31"}}
	require.NoError(t, q.Enqueue(context.Background(), job))
	assert.NotEmpty(t, job.JobID)

	done := waitForStatus(t, store, job.JobID, StatusCompleted)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, map[string]string{"report_date": "2025-08-31"}, done.Result)
	assert.Empty(t, done.Error)
}

func TestQueue_FailedJobRecordsError(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Stop(context.Background())

	q.Start(context.Background(), 1, func(context.Context, *ReportJob) (any, error) {
		return nil, errors.New("upstream 503")
	})

	job := &ReportJob{}
	require.NoError(t, q.Enqueue(context.Background(), job))

	failed := waitForStatus(t, store, job.JobID, StatusFailed)
	assert.Equal(t, "upstream 503", failed.Error)
	assert.Nil(t, failed.Result)
}

func TestQueue_EnqueueAfterStop(t *testing.T) {
	store := NewStore()
	q := NewQueue(1, store)
	require.NoError(t, q.Stop(context.Background()))

	err := q.Enqueue(context.Background(), &ReportJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestQueue_EnqueueBlocksUntilContextCancelled(t *testing.T) {
	store := NewStore()
	q := NewQueue(1, store)
	defer q.Stop(context.Background())

	// No workers started: the second enqueue has nowhere to go.
	require.NoError(t, q.Enqueue(context.Background(), &ReportJob{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, &ReportJob{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_GetUnknownJob(t *testing.T) {
	store := NewStore()
	_, err := store.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStore_CopiesOnSaveAndGet(t *testing.T) {
	store := NewStore()
	job := &ReportJob{JobID: "j1", Status: StatusPending}
	store.Save(job)

	job.Status = StatusFailed
	got, err := store.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	got.Status = StatusRunning
	again, err := store.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}
