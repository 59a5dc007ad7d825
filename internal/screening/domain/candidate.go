package domain

// PlaceholderName is used when no candidate name could be derived from the
// resume text or the scoring reply.
const PlaceholderName = "Unknown Candidate"

// Candidate is the screening result for a single resume document. It is
// created exactly once when the document finishes processing (successfully
// or as a recorded failure) and is immutable afterwards.
type Candidate struct {
	CandidateID string `db:"candidate_id"`
	JobID       string `db:"job_id"`
	// Position is the document's submission index, used as the tie-breaker
	// when ranking candidates with equal scores.
	Position        int     `db:"position"`
	Name            string  `db:"name"`
	Email           string  `db:"email"`
	Phone           string  `db:"phone"`
	ProfileLink     string  `db:"profile_link"`
	Score           float64 `db:"score"`
	Summary         string  `db:"summary"`
	MatchedKeywords []string
	JDKeywords      []string
	MatchRatio      float64 `db:"match_ratio"`
}

// Classification derives the tier from the stored score. It is never stored
// independently, so it cannot drift from the score.
func (c *Candidate) Classification() string {
	return Classify(c.Score)
}
