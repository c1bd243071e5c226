package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/codesan/internal/sanitizer"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *sanitizer.Report) error
}

// Options tunes the human-readable writers.
type Options struct {
	// Quiet limits text output to failed files.
	Quiet bool
	// Verbose adds per-category counts and warnings for each file.
	Verbose bool
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{Quiet: opts.Quiet, Verbose: opts.Verbose}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"text", "json", "markdown"}
}

// WriteReport writes the report to outPath, or to stdout when outPath is
// empty. A nil stdout means os.Stdout.
func WriteReport(report *sanitizer.Report, format, outPath string, stdout io.Writer, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else if stdout != nil {
		w = stdout
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
