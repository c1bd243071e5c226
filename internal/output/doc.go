// Package output formats sanitization reports for display or machine consumption.
//
// Three formats are supported:
//   - text     human-readable terminal output, styled with lipgloss (default)
//   - json     full structured JSON report
//   - markdown summary and per-file tables, suitable for CI job summaries
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*sanitizer.Report]. [WriteReport]
// handles destination selection.
package output
