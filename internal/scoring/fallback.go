package scoring

import (
	"fmt"
	"math"
)

// FallbackScore is the deterministic keyword-overlap scorer used when the
// remote scoring service is unavailable or returns an invalid reply.
// Identical inputs always yield identical results.
//
// The score follows a square-root curve over the match ratio rather than the
// raw ratio: a resume matching 2 of 5 JD keywords is already a solid signal,
// and the curve places it in the Strong band while keeping the score strictly
// monotone in the ratio and anchored at 0 and 100.
func FallbackScore(jd, resume string) Result {
	kw := MatchKeywords(jd, resume)
	score := math.Round(100 * math.Sqrt(kw.Ratio))

	return Result{
		Source: SourceFallback,
		Score:  score,
		Summary: fmt.Sprintf("Keyword analysis: %d of %d job description keywords matched",
			len(kw.Matched), len(kw.JDKeywords)),
		MatchedKeywords: kw.Matched,
		JDKeywords:      kw.JDKeywords,
		MatchRatio:      kw.Ratio,
	}
}
