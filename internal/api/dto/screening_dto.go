package dto

// CreateScreeningResponse acknowledges an accepted screening job.
type CreateScreeningResponse struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	TotalFiles int    `json:"total_files"`
}

// CandidateDTO is the per-candidate shape of the status response. The field
// names are a contract consumed by the presentation layer; do not rename.
type CandidateDTO struct {
	Name            string   `json:"name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	ProfileLink     *string  `json:"profile_link"`
	Score           float64  `json:"score"`
	Classification  string   `json:"classification"`
	Summary         string   `json:"summary"`
	MatchedKeywords []string `json:"matched_keywords"`
	JDKeywords      []string `json:"jd_keywords"`
	MatchRatio      float64  `json:"match_ratio"`
}

// ScreeningStatusResponse is the polling response for a single job.
type ScreeningStatusResponse struct {
	JobID      string         `json:"job_id"`
	Status     string         `json:"status"`
	Processed  int            `json:"processed"`
	Total      int            `json:"total"`
	CreatedAt  string         `json:"created_at"`
	Candidates []CandidateDTO `json:"candidates"`
}

// ListScreeningsRequest carries the listing query parameters.
type ListScreeningsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ScreeningSummaryDTO is the job shape in listings, without candidates.
type ScreeningSummaryDTO struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	CreatedAt string `json:"created_at"`
}

// ListScreeningsResponse is a cursor-paginated page of screening jobs.
type ListScreeningsResponse struct {
	Screenings []ScreeningSummaryDTO `json:"screenings"`
	NextCursor string                `json:"next_cursor,omitempty"`
}
