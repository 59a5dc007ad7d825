// Package identity derives candidate contact details from resume text using
// best-effort heuristics. Identification never fails; missing fields stay empty.
package identity

import (
	"regexp"
	"strings"

	"github.com/hrscreen/resume-screener/internal/screening/domain"
)

// Contact holds whatever identity details could be derived from a resume.
// Any field may be empty except Name, which the caller resolves through
// ResolveName.
type Contact struct {
	Name        string
	Email       string
	Phone       string
	ProfileLink string
}

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern  = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?(?:\(?\d{2,4}\)?[\s.-]?)?\d{3,4}[\s.-]?\d{3,4}`)
	githubPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9_-]+)`)
	labelPattern  = regexp.MustCompile(`(?m)(?:Name|Full Name|Candidate Name|Applicant)\s*[:\-]\s*([A-Z][a-z]+(?: [A-Z][a-z]+)+)`)
)

// headerPhrases mark lines that look like document headers or section titles,
// never personal names.
var headerPhrases = []string{
	"resume", "cv", "curriculum", "vitae", "application", "profile",
	"objective", "summary", "professional", "experience", "education",
	"skills", "contact", "phone", "email", "address", "linkedin",
	"github", "portfolio", "website",
}

// nameStrategies are tried in order; the first non-empty result wins.
var nameStrategies = []func(text string, lines []string) string{
	nameFromTopLines,
	nameFromLabel,
	nameFromEmail,
}

// Identify extracts name, email, phone, and profile link from resume text.
func Identify(text string) Contact {
	var c Contact
	if strings.TrimSpace(text) == "" {
		return c
	}

	if m := emailPattern.FindString(text); m != "" {
		c.Email = strings.ToLower(m)
	}
	c.Phone = findPhone(text)
	if m := githubPattern.FindStringSubmatch(text); m != nil {
		c.ProfileLink = "https://github.com/" + m[1]
	}

	lines := nonEmptyLines(text)
	for _, strategy := range nameStrategies {
		if name := strategy(text, lines); name != "" {
			c.Name = name
			break
		}
	}

	return c
}

// ResolveName returns the first non-empty candidate name, falling back to
// the fixed placeholder.
func ResolveName(names ...string) string {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return strings.TrimSpace(n)
		}
	}
	return domain.PlaceholderName
}

// findPhone locates the first plausible phone number and normalizes it to
// digits plus an optional leading +. Matches with fewer than 7 or more than
// 15 digits are rejected as unlikely numbers.
func findPhone(text string) string {
	for _, raw := range phonePattern.FindAllString(text, 5) {
		raw = strings.TrimSpace(raw)
		digits := keepDigits(raw)
		if len(digits) < 7 || len(digits) > 15 {
			continue
		}
		if strings.HasPrefix(raw, "+") {
			return "+" + digits
		}
		return digits
	}
	return ""
}

func keepDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

func lineIsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range headerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// nameFromTopLines scans the first few lines for a capitalized 2-4 word
// sequence that does not look like a section header.
func nameFromTopLines(_ string, lines []string) string {
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}

	for _, line := range lines[:limit] {
		// label and contact lines ("Name: ...", "tel: ...") belong to the
		// other strategies
		if len(line) >= 50 || strings.ContainsRune(line, ':') || lineIsHeader(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}

		var nameWords []string
		for _, w := range words {
			clean := cleanWord(w)
			if clean == "" || !isCapitalizedAlpha(clean) {
				continue
			}
			nameWords = append(nameWords, clean)
		}
		if len(nameWords) >= 2 {
			return strings.Join(nameWords, " ")
		}
	}
	return ""
}

// nameFromLabel matches explicit "Name: John Doe" style annotations.
func nameFromLabel(text string, _ []string) string {
	if m := labelPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// nameFromEmail derives "John Doe" from john.doe@example.com by splitting
// the local part on separators and capitalizing the alpha tokens.
func nameFromEmail(text string, _ []string) string {
	email := emailPattern.FindString(text)
	if email == "" {
		return ""
	}
	local := strings.SplitN(email, "@", 2)[0]

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})

	var nameParts []string
	for _, p := range parts {
		if len(p) > 1 && isAlpha(p) {
			nameParts = append(nameParts, capitalize(p))
		}
		if len(nameParts) == 3 {
			break
		}
	}
	if len(nameParts) >= 2 {
		return strings.Join(nameParts, " ")
	}
	return ""
}

// cleanWord strips punctuation but keeps hyphenated names intact.
func cleanWord(w string) string {
	var sb strings.Builder
	for _, r := range w {
		if isAlphaRune(r) || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isCapitalizedAlpha(w string) bool {
	if w == "" || w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	return isAlpha(strings.ReplaceAll(w, "-", ""))
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlphaRune(r) {
			return false
		}
	}
	return true
}

func isAlphaRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
