package scoring

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are excluded from keyword sets on both the job description and
// resume side.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "that": {}, "this": {}, "it": {},
	"we": {}, "you": {}, "they": {}, "will": {}, "can": {}, "should": {},
	"must": {}, "not": {}, "from": {}, "as": {}, "do": {}, "does": {},
	"did": {}, "so": {}, "if": {},
}

// KeywordMatch is the keyword overlap between a job description and a
// resume. Matched is always a subset of JDKeywords, and
// Ratio == len(Matched)/len(JDKeywords) (0 for an empty JD set).
type KeywordMatch struct {
	Matched    []string
	JDKeywords []string
	Ratio      float64
}

// Tokenize normalizes text into a keyword set: lowercased, split on
// punctuation, stopwords removed. '+' and '#' are kept inside tokens so
// terms like "c++" and "c#" survive.
func Tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// MatchKeywords computes the keyword overlap between a JD and resume text.
// Both keyword lists come back sorted so the output is deterministic.
func MatchKeywords(jd, resume string) KeywordMatch {
	jdSet := Tokenize(jd)
	resumeSet := Tokenize(resume)

	matched := make([]string, 0, len(jdSet))
	jdKeywords := make([]string, 0, len(jdSet))
	for kw := range jdSet {
		jdKeywords = append(jdKeywords, kw)
		if _, ok := resumeSet[kw]; ok {
			matched = append(matched, kw)
		}
	}
	sort.Strings(matched)
	sort.Strings(jdKeywords)

	var ratio float64
	if len(jdKeywords) > 0 {
		ratio = float64(len(matched)) / float64(len(jdKeywords))
	}

	return KeywordMatch{
		Matched:    matched,
		JDKeywords: jdKeywords,
		Ratio:      ratio,
	}
}
