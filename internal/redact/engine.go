package redact

import (
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"
)

// Result is the outcome of sanitizing one document.
type Result struct {
	Text string
	// Replacements counts matches that were actually rewritten.
	Replacements int
	ByCategory   map[Category]int
	// Skipped is set when the document already looked sanitized.
	Skipped bool
}

// Engine applies a catalog to documents. The zero value is not usable; use
// New.
type Engine struct {
	catalog *Catalog
	guard   Guard
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithThreshold overrides the already-sanitized threshold. Zero disables
// the whole-document guard.
func WithThreshold(n int) Option {
	return func(e *Engine) {
		e.guard.Threshold = n
	}
}

// New returns an engine over the default catalog unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: DefaultCatalog(),
		guard:   Guard{Threshold: DefaultThreshold},
	}
	for _, o := range opts {
		o(e)
	}
	e.guard.Indicators = e.catalog.Indicators()
	return e
}

// Catalog returns the catalog the engine applies.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Guard returns the whole-document guard in effect.
func (e *Engine) Guard() Guard {
	return e.guard
}

// Sanitize redacts doc for every enabled category.
//
// Categories run in catalog order and each category's patterns in declared
// order, every pattern seeing the output of the ones before it. An error is
// only possible when the catalog was built with a match timeout; the result
// then holds the text as it was before the failing pattern.
func (e *Engine) Sanitize(doc string, enabled CategorySet) (Result, error) {
	res := Result{Text: doc, ByCategory: map[Category]int{}}
	if e.guard.IsAlreadySanitized(doc) {
		res.Skipped = true
		return res, nil
	}

	for _, entry := range e.catalog.entries {
		if !enabled.Has(entry.Category) {
			continue
		}
		for _, p := range entry.Patterns {
			cat := entry.Category
			n := 0
			out, err := p.re.ReplaceFunc(res.Text, func(m regexp2.Match) string {
				text := m.String()
				act := e.catalog.Decide(cat, text)
				if act.Skip {
					return text
				}
				n++
				return act.Text
			}, -1, -1)
			if err != nil {
				return res, fmt.Errorf("%s pattern %q: %w", cat, p.Name, err)
			}
			res.Text = out
			if n > 0 {
				res.Replacements += n
				res.ByCategory[cat] += n
			}
		}
	}
	return res, nil
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Sanitize redacts doc with the default engine.
func Sanitize(doc string, enabled CategorySet) (Result, error) {
	return defaultEngine().Sanitize(doc, enabled)
}
