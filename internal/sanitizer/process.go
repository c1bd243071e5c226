package sanitizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/codesan/internal/cache"
	"github.com/dshills/codesan/internal/redact"
	"github.com/dshills/codesan/internal/textenc"
)

// DefaultPrefix is prepended to the input file name to form the output name.
const DefaultPrefix = "sanitized_"

// Options controls file processing.
type Options struct {
	Prefix     string
	Categories redact.CategorySet
	// DryRun sanitizes and reports without writing output files.
	DryRun bool
	// Jobs bounds how many files are processed at once; zero means NumCPU.
	Jobs int
}

// Processor sanitizes files with a shared engine.
type Processor struct {
	engine *redact.Engine
	cache  *cache.Cache
	opts   Options
	log    *slog.Logger
}

// NewProcessor creates a processor. A nil cache disables caching and a nil
// logger falls back to slog.Default.
func NewProcessor(engine *redact.Engine, c *cache.Cache, opts Options, logger *slog.Logger) *Processor {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Categories == nil {
		opts.Categories = redact.AllEnabled()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if c == nil {
		c, _ = cache.New(false, "", 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{engine: engine, cache: c, opts: opts, log: logger}
}

// OutputPath returns where the sanitized copy of path is written.
func OutputPath(path, prefix string) string {
	return filepath.Join(filepath.Dir(path), prefix+filepath.Base(path))
}

// Run processes files concurrently and returns results in input order.
// Cancelling ctx stops new files from starting; those are reported as
// failed.
func (p *Processor) Run(ctx context.Context, files []string) []FileResult {
	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)

	for i, f := range files {
		if ctx.Err() != nil {
			results[i] = FileResult{Input: f, Error: ctx.Err().Error()}
			continue
		}
		g.Go(func() error {
			results[i] = p.ProcessFile(ctx, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ProcessFile sanitizes one file and writes the result next to it.
func (p *Processor) ProcessFile(ctx context.Context, path string) FileResult {
	res := FileResult{Input: path, DryRun: p.opts.DryRun}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		return p.fail(res, fmt.Errorf("reading file: %w", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p.fail(res, fmt.Errorf("reading file: %w", err))
	}

	out, sr, err := p.sanitize(data, &res)
	if err != nil {
		return p.fail(res, err)
	}

	res.Output = OutputPath(path, p.opts.Prefix)
	if !p.opts.DryRun {
		if err := writeAtomic(res.Output, out, info.Mode().Perm()); err != nil {
			return p.fail(res, fmt.Errorf("writing output: %w", err))
		}
	}

	res.Success = true
	p.log.Debug("sanitized file",
		"input", path,
		"output", res.Output,
		"encoding", res.Encoding,
		"replacements", sr.Replacements,
		"already_sanitized", sr.Skipped,
		"cached", res.Cached,
	)
	return res
}

// Stream sanitizes r and writes the result to w, keeping r's encoding.
func (p *Processor) Stream(r io.Reader, w io.Writer) (FileResult, error) {
	var res FileResult
	data, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("reading input: %w", err)
	}
	out, _, err := p.sanitize(data, &res)
	if err != nil {
		return res, err
	}
	if _, err := w.Write(out); err != nil {
		return res, fmt.Errorf("writing output: %w", err)
	}
	res.Success = true
	return res, nil
}

func (p *Processor) sanitize(data []byte, res *FileResult) ([]byte, redact.Result, error) {
	text, enc, err := textenc.Decode(data)
	if err != nil {
		return nil, redact.Result{}, err
	}
	res.Encoding = string(enc)

	sr, cached, err := p.sanitizeText(text)
	if err != nil {
		return nil, sr, fmt.Errorf("sanitizing: %w", err)
	}
	res.Cached = cached
	res.Replacements = sr.Replacements
	res.AlreadySanitized = sr.Skipped
	res.Lines = countLines(sr.Text)
	res.CharsRemoved = utf8.RuneCountInString(text) - utf8.RuneCountInString(sr.Text)
	if len(sr.ByCategory) > 0 {
		res.ByCategory = make(map[string]int, len(sr.ByCategory))
		for c, n := range sr.ByCategory {
			res.ByCategory[string(c)] = n
		}
	}

	out, err := textenc.Encode(sr.Text, enc)
	if err != nil {
		return nil, sr, err
	}
	return out, sr, nil
}

func (p *Processor) sanitizeText(text string) (redact.Result, bool, error) {
	key := cache.BuildKey(
		p.engine.Catalog().Fingerprint(),
		p.opts.Categories.String(),
		p.engine.Guard().Threshold,
		text,
	)
	if e, ok := p.cache.Get(key); ok {
		sr := redact.Result{
			Text:         e.Text,
			Replacements: e.Replacements,
			Skipped:      e.Skipped,
			ByCategory:   make(map[redact.Category]int, len(e.ByCategory)),
		}
		for c, n := range e.ByCategory {
			sr.ByCategory[redact.Category(c)] = n
		}
		return sr, true, nil
	}

	sr, err := p.engine.Sanitize(text, p.opts.Categories)
	if err != nil {
		return sr, false, err
	}

	entry := cache.Entry{Text: sr.Text, Replacements: sr.Replacements, Skipped: sr.Skipped}
	if len(sr.ByCategory) > 0 {
		entry.ByCategory = make(map[string]int, len(sr.ByCategory))
		for c, n := range sr.ByCategory {
			entry.ByCategory[string(c)] = n
		}
	}
	if err := p.cache.Put(key, entry); err != nil {
		p.log.Warn("cache write failed", "error", err)
	}
	return sr, false, nil
}

func (p *Processor) fail(res FileResult, err error) FileResult {
	res.Success = false
	res.Error = err.Error()
	p.log.Warn("file failed", "input", res.Input, "error", err)
	return res
}

// countLines treats "\r\n", "\r" and "\n" as line breaks. A trailing break
// does not start another line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + strings.Count(s, "\r") - strings.Count(s, "\r\n")
	if !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "\r") {
		n++
	}
	return n
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
