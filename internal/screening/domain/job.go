package domain

import "time"

// Job status constants. Transitions only move forward:
// PENDING -> PROCESSING -> COMPLETED or FAILED.
const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)

// Job represents a screening job: one job description matched against a
// batch of uploaded resume documents.
type Job struct {
	JobID          string    `db:"job_id"`
	Description    string    `db:"description"`
	Status         string    `db:"status"`
	TotalFiles     int       `db:"total_files"`
	ProcessedFiles int       `db:"processed_files"`
	CreatedAt      time.Time `db:"created_at"`
}

// IsTerminal reports whether the job has reached a final status. Terminal
// jobs are never mutated again.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
