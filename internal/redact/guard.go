package redact

import "strings"

// DefaultThreshold is the number of distinct indicators that marks a
// document as already sanitized. The value is a heuristic.
const DefaultThreshold = 3

// Guard decides whether a whole document already looks sanitized.
type Guard struct {
	Indicators []string
	// Threshold of distinct indicators; zero or less disables the guard.
	Threshold int
}

// Matches counts how many distinct indicators occur in doc.
func (g Guard) Matches(doc string) int {
	n := 0
	for _, ind := range g.Indicators {
		if ind != "" && strings.Contains(doc, ind) {
			n++
		}
	}
	return n
}

// IsAlreadySanitized reports whether doc holds at least Threshold distinct
// indicators.
func (g Guard) IsAlreadySanitized(doc string) bool {
	if g.Threshold <= 0 {
		return false
	}
	return g.Matches(doc) >= g.Threshold
}
