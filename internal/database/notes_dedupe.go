package database

import "strings"

// Duplicate reasons reported back to the caller.
const (
	DuplicateSameTitle       = "a note with the same title was created recently"
	DuplicateSameDescription = "a note with the same description was created recently"
	DuplicateSimilarTitle    = "a note with a very similar title was created recently"
)

type dedupeCandidate struct {
	Title       string
	Description string
}

// findDuplicate runs the three dedupe heuristics in order against a
// creator's recent notes and returns the reason of the first hit, or "".
// Checks: exact title, exact description, then token overlap for titles
// longer than two words.
func findDuplicate(title, description string, existing []dedupeCandidate, threshold float64) string {
	normTitle := normalizeText(title)
	normDesc := normalizeText(description)
	titleTokens := strings.Fields(normTitle)

	for _, c := range existing {
		if normalizeText(c.Title) == normTitle {
			return DuplicateSameTitle
		}
	}
	if normDesc != "" {
		for _, c := range existing {
			if normalizeText(c.Description) == normDesc {
				return DuplicateSameDescription
			}
		}
	}
	if len(titleTokens) > 2 {
		for _, c := range existing {
			otherTokens := strings.Fields(normalizeText(c.Title))
			if tokenOverlap(titleTokens, otherTokens) >= threshold {
				return DuplicateSimilarTitle
			}
		}
	}
	return ""
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenOverlap computes |intersection| / max(|a|, |b|) over unique tokens.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}

	maxLen := len(setA)
	if len(setB) > maxLen {
		maxLen = len(setB)
	}
	return float64(intersection) / float64(maxLen)
}
