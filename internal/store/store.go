// Package store persists screening jobs and candidates behind a narrow
// interface. The orchestrator is the only writer for a given job; candidates
// are append-only.
package store

import (
	"context"
	"time"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// Store is the persistence contract for the screening pipeline.
type Store interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	SetJobStatus(ctx context.Context, jobID, status string) error
	// IncrementProcessed bumps the job's processed counter by one. The
	// increment must be atomic so parallel document workers never lose updates.
	IncrementProcessed(ctx context.Context, jobID string) error
	AddCandidate(ctx context.Context, candidate *domain.Candidate) error
	// ListCandidates returns a job's candidates ranked by score descending,
	// ties broken by submission order.
	ListCandidates(ctx context.Context, jobID string) ([]domain.Candidate, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error)
}

// JobFilter narrows and paginates job listings.
type JobFilter struct {
	Status   string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor marks a position in the (created_at DESC, job_id DESC) ordering.
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}
