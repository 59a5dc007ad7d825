// Package orchestrator drives a screening job: it feeds each uploaded
// document through extraction, identity detection, and scoring, records a
// candidate per document, and tracks progress until the job is terminal.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hrscreen/resume-screener/internal/extractor"
	"github.com/hrscreen/resume-screener/internal/identity"
	"github.com/hrscreen/resume-screener/internal/scoring"
	"github.com/hrscreen/resume-screener/internal/screening/domain"
	"github.com/hrscreen/resume-screener/internal/store"
)

// Config holds orchestrator configuration.
type Config struct {
	Store  store.Store
	Engine *scoring.Engine
	Logger *slog.Logger
	// Concurrency bounds the document worker pool.
	Concurrency int
	// ScoringConcurrency caps concurrent calls against the remote scoring
	// service, which rate-limits aggressively.
	ScoringConcurrency int
}

// Orchestrator processes screening jobs. One Run per job; the orchestrator
// is the only writer of that job's status and progress.
type Orchestrator struct {
	store        store.Store
	engine       *scoring.Engine
	logger       *slog.Logger
	concurrency  int
	scoringSlots chan struct{}
}

// New creates an orchestrator.
func New(cfg *Config) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	scoringConcurrency := cfg.ScoringConcurrency
	if scoringConcurrency <= 0 {
		scoringConcurrency = 2
	}

	return &Orchestrator{
		store:        cfg.Store,
		engine:       cfg.Engine,
		logger:       cfg.Logger,
		concurrency:  concurrency,
		scoringSlots: make(chan struct{}, scoringConcurrency),
	}
}

// StartJob launches Run in a background goroutine. The job runs to
// completion independent of the submitting request; abandoning the progress
// poll has no effect on it.
func (o *Orchestrator) StartJob(job *domain.Job, docs []domain.RawDocument) {
	go o.Run(context.Background(), job, docs)
}

// Run processes every document of a job and decides the terminal status.
// Per-document failures are recorded as Weak candidates and never abort
// sibling processing; the job only fails when its pre-conditions do not hold
// or no document at all could be read.
func (o *Orchestrator) Run(ctx context.Context, job *domain.Job, docs []domain.RawDocument) {
	logger := o.logger.With(slog.String("job_id", job.JobID))

	if strings.TrimSpace(job.Description) == "" || len(docs) == 0 {
		logger.Error("Job pre-conditions not met",
			slog.Int("documents", len(docs)),
		)
		o.setStatus(ctx, logger, job.JobID, domain.JobStatusFailed)
		return
	}

	o.setStatus(ctx, logger, job.JobID, domain.JobStatusProcessing)
	logger.Info("Screening started",
		slog.Int("total_files", len(docs)),
		slog.Int("concurrency", o.concurrency),
	)

	type task struct {
		position int
		doc      domain.RawDocument
	}

	tasks := make(chan task)
	var wg sync.WaitGroup
	var succeeded atomic.Int64

	workers := o.concurrency
	if workers > len(docs) {
		workers = len(docs)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				if o.processDocument(ctx, job, t.position, t.doc) {
					succeeded.Add(1)
				}
				// Progress advances exactly once per attempted document,
				// success or recorded failure.
				if err := o.store.IncrementProcessed(ctx, job.JobID); err != nil {
					logger.Error("Failed to increment progress",
						slog.String("error", err.Error()),
					)
				}
			}
		}()
	}

	for i, doc := range docs {
		tasks <- task{position: i, doc: doc}
	}
	close(tasks)
	wg.Wait()

	if succeeded.Load() == 0 {
		logger.Error("No document could be read, marking job failed",
			slog.Int("total_files", len(docs)),
		)
		o.setStatus(ctx, logger, job.JobID, domain.JobStatusFailed)
		return
	}

	o.setStatus(ctx, logger, job.JobID, domain.JobStatusCompleted)
	logger.Info("Screening completed",
		slog.Int64("succeeded", succeeded.Load()),
		slog.Int("total_files", len(docs)),
	)
}

// processDocument runs one document through the pipeline and records its
// candidate. It reports whether the document was readable; scoring problems
// never count as failure because the engine falls back internally.
func (o *Orchestrator) processDocument(ctx context.Context, job *domain.Job, position int, doc domain.RawDocument) bool {
	logger := o.logger.With(
		slog.String("job_id", job.JobID),
		slog.String("filename", doc.Filename),
	)

	text, err := extractor.Extract(doc)
	if err != nil {
		logger.Warn("Document extraction failed",
			slog.String("error", err.Error()),
		)
		o.recordCandidate(ctx, logger, &domain.Candidate{
			CandidateID: uuid.New().String(),
			JobID:       job.JobID,
			Position:    position,
			Name:        domain.PlaceholderName,
			Score:       0,
			Summary:     fmt.Sprintf("Failed to process %s: %s", doc.Filename, err.Error()),
		})
		return false
	}

	contact := identity.Identify(text)

	// Scoring calls are capped separately from the extraction pool.
	o.scoringSlots <- struct{}{}
	result := o.engine.Score(ctx, job.Description, text)
	<-o.scoringSlots

	o.recordCandidate(ctx, logger, &domain.Candidate{
		CandidateID:     uuid.New().String(),
		JobID:           job.JobID,
		Position:        position,
		Name:            identity.ResolveName(contact.Name, result.Name),
		Email:           contact.Email,
		Phone:           contact.Phone,
		ProfileLink:     contact.ProfileLink,
		Score:           result.Score,
		Summary:         result.Summary,
		MatchedKeywords: result.MatchedKeywords,
		JDKeywords:      result.JDKeywords,
		MatchRatio:      result.MatchRatio,
	})

	logger.Info("Document processed",
		slog.Float64("score", result.Score),
		slog.String("source", result.Source),
	)
	return true
}

func (o *Orchestrator) recordCandidate(ctx context.Context, logger *slog.Logger, candidate *domain.Candidate) {
	if err := o.store.AddCandidate(ctx, candidate); err != nil {
		logger.Error("Failed to record candidate",
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) setStatus(ctx context.Context, logger *slog.Logger, jobID, status string) {
	if err := o.store.SetJobStatus(ctx, jobID, status); err != nil {
		logger.Error("Failed to update job status",
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
	}
}
