// Package scoring produces a relevance score for a (job description, resume)
// pair. The primary strategy calls a remote scoring service; any failure mode
// there silently falls back to a deterministic keyword-overlap scorer.
package scoring

import (
	"context"
	"log/slog"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// Result sources, tagging which strategy produced a score.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Result is the outcome of scoring one resume against a job description.
// The keyword fields are always computed locally from the two texts, so
// MatchedKeywords is a subset of JDKeywords regardless of the source branch.
type Result struct {
	Source          string
	Score           float64
	Summary         string
	Name            string
	MatchedKeywords []string
	JDKeywords      []string
	MatchRatio      float64
}

// Classification derives the tier from the result's score.
func (r Result) Classification() string {
	return domain.Classify(r.Score)
}

// RemoteScorer is the remote scoring strategy contract, satisfied by
// RemoteClient and by test doubles.
type RemoteScorer interface {
	Score(ctx context.Context, jd, resume string) (RemoteReply, error)
}

// Engine dispatches between the remote strategy and the keyword fallback.
type Engine struct {
	remote RemoteScorer
	logger *slog.Logger
}

// NewEngine creates a scoring engine. A nil remote scorer means
// fallback-only operation.
func NewEngine(remote RemoteScorer, logger *slog.Logger) *Engine {
	return &Engine{remote: remote, logger: logger}
}

// Score evaluates a resume against a job description. Remote failures are
// never surfaced to the caller; they only select the fallback branch.
func (e *Engine) Score(ctx context.Context, jd, resume string) Result {
	if e.remote == nil {
		return FallbackScore(jd, resume)
	}

	reply, err := e.remote.Score(ctx, jd, resume)
	if err != nil {
		e.logger.Warn("Remote scoring failed, using keyword fallback",
			slog.String("error", err.Error()),
		)
		return FallbackScore(jd, resume)
	}

	kw := MatchKeywords(jd, resume)
	return Result{
		Source:          SourceRemote,
		Score:           domain.ClampScore(reply.Score),
		Summary:         reply.Summary,
		Name:            reply.Name,
		MatchedKeywords: kw.Matched,
		JDKeywords:      kw.JDKeywords,
		MatchRatio:      kw.Ratio,
	}
}
