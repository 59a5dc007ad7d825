package domain

// Classification tiers, ordered from best to worst.
const (
	ClassificationExcellent = "Excellent"
	ClassificationStrong    = "Strong"
	ClassificationPartial   = "Partial"
	ClassificationWeak      = "Weak"
)

// Score thresholds for each tier. Tunable, but classification must stay
// monotone in score.
const (
	ThresholdExcellent = 80.0
	ThresholdStrong    = 60.0
	ThresholdPartial   = 40.0
)

// ClampScore forces a score into the valid [0,100] range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Classify maps a score to its classification tier. The score is clamped
// first, so the same function is safe for both scoring branches.
func Classify(score float64) string {
	s := ClampScore(score)
	switch {
	case s >= ThresholdExcellent:
		return ClassificationExcellent
	case s >= ThresholdStrong:
		return ClassificationStrong
	case s >= ThresholdPartial:
		return ClassificationPartial
	default:
		return ClassificationWeak
	}
}
