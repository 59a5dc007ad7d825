package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

func newTestJob(total int) *domain.Job {
	return &domain.Job{
		JobID:       uuid.New().String(),
		Description: "go developer",
		Status:      domain.JobStatusPending,
		TotalFiles:  total,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestMemory_CreateAndGetJob(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := newTestJob(3)

	require.NoError(t, m.CreateJob(ctx, job))

	got, err := m.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, got.JobID)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.Equal(t, 3, got.TotalFiles)
	assert.Equal(t, 0, got.ProcessedFiles)

	// the returned job is a copy; mutating it must not touch the store
	got.Status = domain.JobStatusFailed
	again, err := m.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, again.Status)
}

func TestMemory_CreateJob_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := newTestJob(1)

	require.NoError(t, m.CreateJob(ctx, job))
	assert.Error(t, m.CreateJob(ctx, job))
}

func TestMemory_GetJob_NotFound(t *testing.T) {
	m := NewMemory()

	_, err := m.GetJob(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemory_SetJobStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := newTestJob(1)
	require.NoError(t, m.CreateJob(ctx, job))

	require.NoError(t, m.SetJobStatus(ctx, job.JobID, domain.JobStatusProcessing))
	require.NoError(t, m.SetJobStatus(ctx, job.JobID, domain.JobStatusCompleted))

	// terminal jobs are immutable
	err := m.SetJobStatus(ctx, job.JobID, domain.JobStatusProcessing)
	require.Error(t, err)

	got, err := m.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
}

func TestMemory_IncrementProcessed_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := newTestJob(100)
	require.NoError(t, m.CreateJob(ctx, job))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.IncrementProcessed(ctx, job.JobID))
		}()
	}
	wg.Wait()

	got, err := m.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.ProcessedFiles)

	// the counter never exceeds the total
	assert.Error(t, m.IncrementProcessed(ctx, job.JobID))
}

func TestMemory_ListCandidates_Ranking(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	job := newTestJob(4)
	require.NoError(t, m.CreateJob(ctx, job))

	scores := []struct {
		position int
		score    float64
	}{
		{0, 40},
		{1, 85},
		{2, 40},
		{3, 92},
	}
	for _, s := range scores {
		require.NoError(t, m.AddCandidate(ctx, &domain.Candidate{
			CandidateID: uuid.New().String(),
			JobID:       job.JobID,
			Position:    s.position,
			Name:        fmt.Sprintf("Candidate %d", s.position),
			Score:       s.score,
		}))
	}

	ranked, err := m.ListCandidates(ctx, job.JobID)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	assert.Equal(t, 92.0, ranked[0].Score)
	assert.Equal(t, 85.0, ranked[1].Score)
	// equal scores keep submission order
	assert.Equal(t, 0, ranked[2].Position)
	assert.Equal(t, 2, ranked[3].Position)
}

func TestMemory_AddCandidate_UnknownJob(t *testing.T) {
	m := NewMemory()

	err := m.AddCandidate(context.Background(), &domain.Candidate{
		CandidateID: uuid.New().String(),
		JobID:       uuid.New().String(),
	})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemory_ListJobs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Now().UTC().Truncate(time.Second)
	var jobs []*domain.Job
	for i := 0; i < 5; i++ {
		job := newTestJob(1)
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, m.CreateJob(ctx, job))
		jobs = append(jobs, job)
	}
	require.NoError(t, m.SetJobStatus(ctx, jobs[0].JobID, domain.JobStatusProcessing))
	require.NoError(t, m.SetJobStatus(ctx, jobs[0].JobID, domain.JobStatusCompleted))

	t.Run("newest first", func(t *testing.T) {
		got, err := m.ListJobs(ctx, JobFilter{PageSize: 10})
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := m.ListJobs(ctx, JobFilter{Status: domain.JobStatusCompleted, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, jobs[0].JobID, got[0].JobID)
	})

	t.Run("cursor pagination", func(t *testing.T) {
		first, err := m.ListJobs(ctx, JobFilter{PageSize: 2})
		require.NoError(t, err)
		require.Len(t, first, 3) // page size plus one row signalling more

		cursor := &JobCursor{CreatedAt: first[1].CreatedAt, JobID: first[1].JobID}
		second, err := m.ListJobs(ctx, JobFilter{PageSize: 2, Cursor: cursor})
		require.NoError(t, err)
		require.Len(t, second, 3)
		assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
	})
}
