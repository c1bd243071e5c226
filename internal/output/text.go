package output

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/codesan/internal/redact"
	"github.com/dshills/codesan/internal/sanitizer"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	Quiet   bool
	Verbose bool
}

// textStyles are bound to the destination writer so colour is dropped when
// the report goes to a file or pipe.
type textStyles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	skip  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
	warn  lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("76")),
		skip:  r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("242")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (t *TextWriter) Write(w io.Writer, report *sanitizer.Report) error {
	ew := &errWriter{w: w}
	st := newTextStyles(w)

	if t.Quiet {
		// Errors only.
		for _, f := range report.Files {
			if !f.Success {
				t.writeFile(ew, st, f)
			}
		}
		if report.Summary.Files == 0 {
			ew.println(st.fail.Render("No files were processed."))
		}
		return ew.err
	}

	rule := st.muted.Render(strings.Repeat("─", 60))
	ew.println(st.title.Render("CODE SANITIZER RESULTS"))
	if report.Inputs.DryRun {
		ew.println(st.muted.Render("Dry run: no files written"))
	}
	ew.println(rule)

	for _, f := range report.Files {
		t.writeFile(ew, st, f)
	}

	if len(report.Warnings) > 0 {
		ew.printf("\n%s\n", st.warn.Render("Warnings"))
		for _, msg := range report.Warnings {
			ew.printf("  %s\n", msg)
		}
	}

	s := report.Summary
	ew.println(rule)
	ew.printf("Files: %d processed, %d succeeded, %d failed\n", s.Files, s.Succeeded, s.Failed)
	ew.printf("Replacements: %d", s.Replacements)
	if s.AlreadySanitized > 0 {
		ew.printf(" (%d already sanitized)", s.AlreadySanitized)
	}
	ew.println("")

	for _, c := range orderedCategories(s.ByCategory) {
		ew.printf("  %-12s %d\n", c, s.ByCategory[c])
	}
	if s.Files == 0 {
		ew.println(st.fail.Render("No files were processed."))
	}

	ew.println(st.muted.Render(formatDuration(report.Timing.TotalMs)))
	return ew.err
}

func (t *TextWriter) writeFile(ew *errWriter, st textStyles, f sanitizer.FileResult) {
	switch {
	case !f.Success:
		ew.printf("%s %s: %s\n", st.fail.Render("[fail]"), f.Input, f.Error)
		return
	case f.AlreadySanitized:
		ew.printf("%s %s already sanitized, left unchanged\n", st.skip.Render("[skip]"), f.Input)
	default:
		dest := f.Output
		if dest == "" {
			dest = "(not written)"
		}
		ew.printf("%s %s -> %s (%d %s)\n",
			st.ok.Render("[ok]"), f.Input, dest, f.Replacements, plural(f.Replacements, "replacement"))
	}

	if !t.Verbose {
		return
	}
	ew.printf("     %s\n", st.muted.Render(fileDetail(f)))
	for _, c := range orderedCategories(f.ByCategory) {
		ew.printf("     %-12s %d\n", c, f.ByCategory[c])
	}
}

func fileDetail(f sanitizer.FileResult) string {
	parts := []string{
		strconv.Itoa(f.Lines) + " " + plural(f.Lines, "line"),
		strconv.Itoa(f.CharsRemoved) + " chars removed",
	}
	if f.Encoding != "" {
		parts = append(parts, f.Encoding)
	}
	if f.Cached {
		parts = append(parts, "cached")
	}
	return strings.Join(parts, ", ")
}

// orderedCategories returns the keys of counts in catalog order, followed by
// any unknown keys.
func orderedCategories(counts map[string]int) []string {
	var out []string
	seen := make(map[string]bool, len(counts))
	for _, c := range redact.AllCategories() {
		if n, ok := counts[string(c)]; ok && n > 0 {
			out = append(out, string(c))
			seen[string(c)] = true
		}
	}
	var rest []string
	for c, n := range counts {
		if !seen[c] && n > 0 {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
