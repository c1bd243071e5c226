package redact

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// Placeholder literals substituted for each category.
const (
	ReplacementAPIKey   = "API_KEY_REDACTED"
	ReplacementPassword = "PASSWORD_REDACTED"
	ReplacementEmail    = "user@example.com"
	ReplacementURL      = "https://example.com"
	ReplacementIP       = "192.168.1.1"
	ReplacementPath     = "/path/to/file"
	ReplacementDB       = "database://connection_redacted"
	ReplacementComment  = "// Comment removed"

	// BlockCommentReplacement replaces a whole /* ... */ block.
	BlockCommentReplacement = "/* Comment removed */"

	commentIndicator = "Comment removed"
)

// Pattern is a single compiled detection rule.
type Pattern struct {
	Name string
	re   *regexp2.Regexp
}

// CompilePattern compiles expr with the regexp2 engine. A positive timeout
// bounds each match attempt; zero leaves matching unbounded.
func CompilePattern(name, expr string, timeout time.Duration) (Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return Pattern{}, fmt.Errorf("compiling pattern %q: %w", name, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return Pattern{Name: name, re: re}, nil
}

// Expr returns the source expression.
func (p Pattern) Expr() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Entry groups a category's ordered patterns with its replacement literal.
type Entry struct {
	Category    Category
	Patterns    []Pattern
	Replacement string
}

// Catalog is an ordered, read-only table of categories. A Catalog is never
// mutated after construction and is safe to share between goroutines.
type Catalog struct {
	entries    []Entry
	byCategory map[Category]int
	indicators []string
}

// NewCatalog builds a catalog from entries in application order. The
// indicator set is the list of substrings that mark already-redacted text.
func NewCatalog(entries []Entry, indicators []string) (*Catalog, error) {
	c := &Catalog{
		entries:    make([]Entry, 0, len(entries)),
		byCategory: make(map[Category]int, len(entries)),
		indicators: append([]string(nil), indicators...),
	}
	for _, e := range entries {
		if _, dup := c.byCategory[e.Category]; dup {
			return nil, fmt.Errorf("duplicate category in catalog: %s", e.Category)
		}
		e.Patterns = append([]Pattern(nil), e.Patterns...)
		c.byCategory[e.Category] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Entries returns the catalog entries in application order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for a category.
func (c *Catalog) Lookup(cat Category) (Entry, bool) {
	i, ok := c.byCategory[cat]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Replacement returns the canonical replacement literal for a category.
func (c *Catalog) Replacement(cat Category) string {
	e, _ := c.Lookup(cat)
	return e.Replacement
}

// Indicators returns the substrings that mark text as already redacted.
func (c *Catalog) Indicators() []string {
	return append([]string(nil), c.indicators...)
}

// Fingerprint hashes the catalog's categories, patterns, replacements and
// indicators. Two catalogs with the same fingerprint redact identically.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	for _, e := range c.entries {
		fmt.Fprintf(h, "%s\x00%s\x00", e.Category, e.Replacement)
		for _, p := range e.Patterns {
			fmt.Fprintf(h, "%s\x00", p.Expr())
		}
	}
	for _, ind := range c.indicators {
		fmt.Fprintf(h, "%s\x00", ind)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Quote characters accepted around assigned values: single, double, backtick.
const q = `['"\x60]`
const nq = `[^'"\x60]`

type patternSpec struct {
	name string
	expr string
}

var defaultSpecs = []struct {
	category    Category
	replacement string
	patterns    []patternSpec
}{
	{CategoryAPIKeys, ReplacementAPIKey, []patternSpec{
		{"api key assignment", `(?i)api[_-]?key\s*[:=]\s*` + q + nq + `+` + q},
		{"access token assignment", `(?i)access[_-]?token\s*[:=]\s*` + q + nq + `+` + q},
		{"secret key assignment", `(?i)secret[_-]?key\s*[:=]\s*` + q + nq + `+` + q},
		{"bearer token", `(?i)bearer\s+[A-Za-z0-9_-]{20,}`},
		{"quoted token", `(` + q + `)[A-Za-z0-9_-]{20,}` + q},
		{"aws access key", `AKIA[0-9A-Z]{16}`},
		{"github token", `ghp_[A-Za-z0-9]{36}`},
		{"github fine-grained token", `github_pat_[A-Za-z0-9_]{82}`},
		{"google api key", `AIza[0-9A-Za-z_-]{35}`},
		{"stripe secret key", `sk_live_[0-9a-zA-Z]{24}`},
		{"stripe publishable key", `pk_live_[0-9a-zA-Z]{24}`},
		{"jwt", `eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`},
	}},
	{CategoryPasswords, ReplacementPassword, []patternSpec{
		{"password assignment", `(?i)password\s*[:=]\s*` + q + nq + `+` + q},
		{"passwd assignment", `(?i)passwd\s*[:=]\s*` + q + nq + `+` + q},
		{"pwd assignment", `(?i)pwd\s*[:=]\s*` + q + nq + `+` + q},
		{"pass assignment", `(?i)pass\s*[:=]\s*` + q + nq + `+` + q},
	}},
	{CategoryEmails, ReplacementEmail, []patternSpec{
		{"email address", `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`},
	}},
	{CategoryURLs, ReplacementURL, []patternSpec{
		{"http url", `https?://(?!example\.com\b)[^\s'"<>]+`},
		{"www host", `www\.(?!example\.com\b)[^\s'"<>]+`},
		// A bare host must start a token: not inside a URL, email, path or
		// longer dotted name.
		{"bare domain", `(?<![\w.@/:\\-])(?![\w.-]*example\.com\b)[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}\b(?:/[^\s'"<>]*)?`},
	}},
	{CategoryIPs, ReplacementIP, []patternSpec{
		{"ipv4", `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`},
		{"ipv6", `\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`},
	}},
	{CategoryPaths, ReplacementPath, []patternSpec{
		{"windows path", `[C-Z]:\\[^\s'"<>]+`},
		{"unix system path", `/(?:home|Users|var|opt|etc|usr)/[^\s'"<>]+`},
		{"home-relative path", `~/[^\s'"<>]+`},
	}},
	{CategoryDBStrings, ReplacementDB, []patternSpec{
		{"mongodb uri", `mongodb://[^\s'"<>]+`},
		{"postgres uri", `postgres://[^\s'"<>]+`},
		{"mysql uri", `mysql://[^\s'"<>]+`},
		{"redis uri", `redis://[^\s'"<>]+`},
		{"ado connection string", `(?i)Server\s*=\s*[^;]+;[^;]*Database\s*=\s*[^;]+`},
	}},
	{CategoryComments, ReplacementComment, []patternSpec{
		{"todo line comment", `//\s*TODO:[^\r\n]*`},
		{"fixme line comment", `//\s*FIXME:[^\r\n]*`},
		{"hack line comment", `//\s*HACK:[^\r\n]*`},
		{"block comment", `/\*[\s\S]*?\*/`},
		{"todo hash comment", `#\s*TODO:[^\r\n]*`},
		{"fixme hash comment", `#\s*FIXME:[^\r\n]*`},
		{"hack hash comment", `#\s*HACK:[^\r\n]*`},
	}},
}

// DefaultIndicators lists every replacement literal, with the comment
// literal reduced to the text shared by its line and block forms.
func DefaultIndicators() []string {
	return []string{
		ReplacementAPIKey,
		ReplacementPassword,
		ReplacementEmail,
		ReplacementURL,
		ReplacementIP,
		ReplacementPath,
		ReplacementDB,
		commentIndicator,
	}
}

// BuildDefaultCatalog compiles the built-in catalog. A positive timeout
// bounds every match attempt.
func BuildDefaultCatalog(timeout time.Duration) (*Catalog, error) {
	entries := make([]Entry, 0, len(defaultSpecs))
	for _, spec := range defaultSpecs {
		e := Entry{Category: spec.category, Replacement: spec.replacement}
		for _, ps := range spec.patterns {
			p, err := CompilePattern(ps.name, ps.expr, timeout)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec.category, err)
			}
			e.Patterns = append(e.Patterns, p)
		}
		entries = append(entries, e)
	}
	return NewCatalog(entries, DefaultIndicators())
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := BuildDefaultCatalog(0)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the shared built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}
