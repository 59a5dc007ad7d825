package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// Memory is an in-process Store keyed by job identifier. A single mutex
// guards both maps; progress increments therefore cannot lose updates even
// with parallel document workers.
type Memory struct {
	mu         sync.RWMutex
	jobs       map[string]*domain.Job
	candidates map[string][]domain.Candidate
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:       make(map[string]*domain.Job),
		candidates: make(map[string][]domain.Candidate),
	}
}

func (m *Memory) CreateJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.JobID]; exists {
		return fmt.Errorf("job %s already exists", job.JobID)
	}
	copied := *job
	m.jobs[job.JobID] = &copied
	return nil
}

func (m *Memory) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *Memory) SetJobStatus(_ context.Context, jobID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}
	job.Status = status
	return nil
}

func (m *Memory) IncrementProcessed(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.ProcessedFiles >= job.TotalFiles {
		return fmt.Errorf("job %s progress already at total %d", jobID, job.TotalFiles)
	}
	job.ProcessedFiles++
	return nil
}

func (m *Memory) AddCandidate(_ context.Context, candidate *domain.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[candidate.JobID]; !ok {
		return domain.ErrJobNotFound
	}
	m.candidates[candidate.JobID] = append(m.candidates[candidate.JobID], *candidate)
	return nil
}

func (m *Memory) ListCandidates(_ context.Context, jobID string) ([]domain.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.jobs[jobID]; !ok {
		return nil, domain.ErrJobNotFound
	}

	ranked := make([]domain.Candidate, len(m.candidates[jobID]))
	copy(ranked, m.candidates[jobID])

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Position < ranked[j].Position
	})
	return ranked, nil
}

func (m *Memory) ListJobs(_ context.Context, filter JobFilter) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]domain.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobs = append(jobs, *job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].JobID > jobs[j].JobID
	})

	if filter.Cursor != nil {
		idx := 0
		for idx < len(jobs) {
			j := jobs[idx]
			if j.CreatedAt.Before(filter.Cursor.CreatedAt) ||
				(j.CreatedAt.Equal(filter.Cursor.CreatedAt) && j.JobID < filter.Cursor.JobID) {
				break
			}
			idx++
		}
		jobs = jobs[idx:]
	}

	// One extra row past the page size lets the caller detect more results,
	// matching the SQL store's behavior.
	if filter.PageSize > 0 && len(jobs) > filter.PageSize+1 {
		jobs = jobs[:filter.PageSize+1]
	}
	return jobs, nil
}
