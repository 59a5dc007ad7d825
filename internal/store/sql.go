package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// SQL is the Store implementation on top of sqlx. Queries use `?`
// placeholders and are passed through Rebind, so the same statements run on
// both the sqlite and postgres drivers.
type SQL struct {
	db *sqlx.DB
}

// NewSQL wraps an open sqlx handle.
func NewSQL(db *sqlx.DB) *SQL {
	return &SQL{db: db}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS screening_jobs (
	job_id          TEXT PRIMARY KEY,
	description     TEXT NOT NULL,
	status          TEXT NOT NULL,
	total_files     INTEGER NOT NULL,
	processed_files INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS screening_candidates (
	candidate_id     TEXT PRIMARY KEY,
	job_id           TEXT NOT NULL,
	position         INTEGER NOT NULL,
	name             TEXT NOT NULL,
	email            TEXT NOT NULL DEFAULT '',
	phone            TEXT NOT NULL DEFAULT '',
	profile_link     TEXT NOT NULL DEFAULT '',
	score            REAL NOT NULL,
	summary          TEXT NOT NULL DEFAULT '',
	matched_keywords TEXT NOT NULL,
	jd_keywords      TEXT NOT NULL,
	match_ratio      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_screening_candidates_job
	ON screening_candidates (job_id, score DESC, position ASC);
`

// EnsureSchema creates the tables if they do not exist yet.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQL) CreateJob(ctx context.Context, job *domain.Job) error {
	query := s.db.Rebind(`
		INSERT INTO screening_jobs (
			job_id, description, status, total_files, processed_files, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		job.JobID,
		job.Description,
		job.Status,
		job.TotalFiles,
		job.ProcessedFiles,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *SQL) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := s.db.Rebind(`
		SELECT job_id, description, status, total_files, processed_files, created_at
		FROM screening_jobs
		WHERE job_id = ?
	`)

	var job domain.Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *SQL) SetJobStatus(ctx context.Context, jobID, status string) error {
	// Terminal statuses are never overwritten.
	query := s.db.Rebind(`
		UPDATE screening_jobs
		SET status = ?
		WHERE job_id = ? AND status NOT IN (?, ?)
	`)

	res, err := s.db.ExecContext(ctx, query, status, jobID,
		domain.JobStatusCompleted, domain.JobStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s not found or already terminal", jobID)
	}
	return nil
}

func (s *SQL) IncrementProcessed(ctx context.Context, jobID string) error {
	// Single-statement increment keeps parallel workers from losing updates
	// and enforces processed <= total.
	query := s.db.Rebind(`
		UPDATE screening_jobs
		SET processed_files = processed_files + 1
		WHERE job_id = ? AND processed_files < total_files
	`)

	res, err := s.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to increment progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s not found or progress already at total", jobID)
	}
	return nil
}

type candidateRow struct {
	CandidateID     string  `db:"candidate_id"`
	JobID           string  `db:"job_id"`
	Position        int     `db:"position"`
	Name            string  `db:"name"`
	Email           string  `db:"email"`
	Phone           string  `db:"phone"`
	ProfileLink     string  `db:"profile_link"`
	Score           float64 `db:"score"`
	Summary         string  `db:"summary"`
	MatchedKeywords string  `db:"matched_keywords"`
	JDKeywords      string  `db:"jd_keywords"`
	MatchRatio      float64 `db:"match_ratio"`
}

func (s *SQL) AddCandidate(ctx context.Context, candidate *domain.Candidate) error {
	matched, err := json.Marshal(keywordsOrEmpty(candidate.MatchedKeywords))
	if err != nil {
		return fmt.Errorf("failed to encode matched keywords: %w", err)
	}
	jdKeywords, err := json.Marshal(keywordsOrEmpty(candidate.JDKeywords))
	if err != nil {
		return fmt.Errorf("failed to encode jd keywords: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO screening_candidates (
			candidate_id, job_id, position, name, email, phone, profile_link,
			score, summary, matched_keywords, jd_keywords, match_ratio
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err = s.db.ExecContext(ctx, query,
		candidate.CandidateID,
		candidate.JobID,
		candidate.Position,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.ProfileLink,
		candidate.Score,
		candidate.Summary,
		string(matched),
		string(jdKeywords),
		candidate.MatchRatio,
	)
	if err != nil {
		return fmt.Errorf("failed to add candidate: %w", err)
	}
	return nil
}

func (s *SQL) ListCandidates(ctx context.Context, jobID string) ([]domain.Candidate, error) {
	query := s.db.Rebind(`
		SELECT candidate_id, job_id, position, name, email, phone, profile_link,
		       score, summary, matched_keywords, jd_keywords, match_ratio
		FROM screening_candidates
		WHERE job_id = ?
		ORDER BY score DESC, position ASC
	`)

	var rows []candidateRow
	if err := s.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
		c := domain.Candidate{
			CandidateID: row.CandidateID,
			JobID:       row.JobID,
			Position:    row.Position,
			Name:        row.Name,
			Email:       row.Email,
			Phone:       row.Phone,
			ProfileLink: row.ProfileLink,
			Score:       row.Score,
			Summary:     row.Summary,
			MatchRatio:  row.MatchRatio,
		}
		if err := json.Unmarshal([]byte(row.MatchedKeywords), &c.MatchedKeywords); err != nil {
			return nil, fmt.Errorf("failed to decode matched keywords: %w", err)
		}
		if err := json.Unmarshal([]byte(row.JDKeywords), &c.JDKeywords); err != nil {
			return nil, fmt.Errorf("failed to decode jd keywords: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s *SQL) ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	query := `
		SELECT job_id, description, status, total_files, processed_files, created_at
		FROM screening_jobs
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.Cursor != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND job_id < ?))`
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	query += " ORDER BY created_at DESC, job_id DESC"

	if filter.PageSize > 0 {
		// Fetch one extra row so the caller can detect more results.
		query += " LIMIT ?"
		args = append(args, filter.PageSize+1)
	}

	var jobs []domain.Job
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func keywordsOrEmpty(kw []string) []string {
	if kw == nil {
		return []string{}
	}
	return kw
}
