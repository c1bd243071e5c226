package redact

import "strings"

// Action is the outcome of the replacement policy for one match.
type Action struct {
	Skip bool
	Text string
}

// Decide returns the substitute for a match using the default catalog.
func Decide(cat Category, match string) Action {
	return DefaultCatalog().Decide(cat, match)
}

// Decide returns the substitute text for a match of the given category.
//
// Matches that already contain an indicator are skipped. Key/value matches
// for api_keys and passwords keep the key and get a double-quoted
// placeholder value; block comments keep their delimiters.
func (c *Catalog) Decide(cat Category, match string) Action {
	if c.containsIndicator(match) {
		return Action{Skip: true}
	}
	repl := c.Replacement(cat)
	switch {
	case (cat == CategoryAPIKeys || cat == CategoryPasswords) && strings.Contains(match, "="):
		key, _, _ := strings.Cut(match, "=")
		return Action{Text: key + `="` + repl + `"`}
	case cat == CategoryComments && strings.HasPrefix(match, "/*"):
		return Action{Text: BlockCommentReplacement}
	}
	return Action{Text: repl}
}

func (c *Catalog) containsIndicator(s string) bool {
	for _, ind := range c.indicators {
		if ind != "" && strings.Contains(s, ind) {
			return true
		}
	}
	return false
}
