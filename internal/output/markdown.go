package output

import (
	"io"
	"strings"

	"github.com/dshills/codesan/internal/sanitizer"
)

// MarkdownWriter outputs a markdown report suitable for CI job summaries.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *sanitizer.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("## Code Sanitizer Results\n\n")
	if report.Inputs.DryRun {
		ew.printf("_Dry run: no files written._\n\n")
	}

	// Summary table
	ew.printf("| Metric | Count |\n")
	ew.printf("|--------|-------|\n")
	ew.printf("| Files | %d |\n", s.Files)
	ew.printf("| Succeeded | %d |\n", s.Succeeded)
	ew.printf("| Failed | %d |\n", s.Failed)
	ew.printf("| Already sanitized | %d |\n", s.AlreadySanitized)
	ew.printf("| **Replacements** | **%d** |\n\n", s.Replacements)

	if len(s.ByCategory) > 0 {
		ew.printf("| Category | Replacements |\n")
		ew.printf("|----------|--------------|\n")
		for _, c := range orderedCategories(s.ByCategory) {
			ew.printf("| `%s` | %d |\n", c, s.ByCategory[c])
		}
		ew.println("")
	}

	if len(report.Files) == 0 {
		ew.println("No files were processed. :warning:")
		return ew.err
	}

	ew.printf("<details>\n<summary>Files (%d)</summary>\n\n", len(report.Files))
	ew.printf("| Status | Input | Output | Replacements |\n")
	ew.printf("|--------|-------|--------|--------------|\n")
	for _, f := range report.Files {
		out := mdCode(f.Output)
		if !f.Success {
			out = mdEscape(f.Error)
		}
		ew.printf("| %s | `%s` | %s | %d |\n", mdStatusIcon(f), f.Input, out, f.Replacements)
	}
	ew.printf("\n</details>\n\n")

	if len(report.Warnings) > 0 {
		ew.printf("**Warnings:**\n\n")
		for _, msg := range report.Warnings {
			ew.printf("- %s\n", mdEscape(msg))
		}
		ew.println("")
	}

	ew.printf("*%s*\n", formatDuration(report.Timing.TotalMs))
	return ew.err
}

func mdStatusIcon(f sanitizer.FileResult) string {
	switch {
	case !f.Success:
		return ":x:"
	case f.AlreadySanitized:
		return ":fast_forward:"
	default:
		return ":white_check_mark:"
	}
}

func mdCode(s string) string {
	if s == "" {
		return s
	}
	return "`" + s + "`"
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
