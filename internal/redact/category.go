package redact

import (
	"fmt"
	"strings"
)

// Category is a named class of sensitive data.
type Category string

const (
	CategoryAPIKeys   Category = "api_keys"
	CategoryPasswords Category = "passwords"
	CategoryEmails    Category = "emails"
	CategoryURLs      Category = "urls"
	CategoryIPs       Category = "ips"
	CategoryPaths     Category = "paths"
	CategoryDBStrings Category = "db_strings"
	CategoryComments  Category = "comments"
)

// categoryOrder is the order categories are applied in. Comments run last so
// secret patterns see comment text before it is stripped.
var categoryOrder = []Category{
	CategoryAPIKeys,
	CategoryPasswords,
	CategoryEmails,
	CategoryURLs,
	CategoryIPs,
	CategoryPaths,
	CategoryDBStrings,
	CategoryComments,
}

// AllCategories returns every category in application order.
func AllCategories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// FlagName returns the kebab-case form used in CLI flags, e.g. "db-strings".
func (c Category) FlagName() string {
	return strings.ReplaceAll(string(c), "_", "-")
}

// ParseCategory accepts either the snake_case or kebab-case spelling.
func ParseCategory(s string) (Category, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range categoryOrder {
		if string(c) == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// CategorySet is the set of categories enabled for a run.
type CategorySet map[Category]bool

// AllEnabled returns a set with every category enabled.
func AllEnabled() CategorySet {
	s := make(CategorySet, len(categoryOrder))
	for _, c := range categoryOrder {
		s[c] = true
	}
	return s
}

// Only returns a set with just the given categories enabled.
func Only(cats ...Category) CategorySet {
	s := make(CategorySet, len(cats))
	for _, c := range cats {
		s[c] = true
	}
	return s
}

// Without returns a copy of s with the given categories disabled.
func (s CategorySet) Without(cats ...Category) CategorySet {
	out := make(CategorySet, len(s))
	for c, on := range s {
		out[c] = on
	}
	for _, c := range cats {
		delete(out, c)
	}
	return out
}

// Has reports whether c is enabled.
func (s CategorySet) Has(c Category) bool {
	return s[c]
}

// Sorted returns the enabled categories in application order.
func (s CategorySet) Sorted() []Category {
	var out []Category
	for _, c := range categoryOrder {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set as a comma-separated list in application order.
func (s CategorySet) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}
