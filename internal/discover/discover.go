package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFiles is returned when no argument resolved to a file.
var ErrNoFiles = errors.New("no files found to process")

// DefaultExtensions are the file extensions picked up when walking a
// directory. Files without an extension are included as well.
var DefaultExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".html", ".htm", ".css", ".scss", ".sass",
	".php", ".rb", ".go", ".java", ".c", ".cpp", ".h", ".hpp", ".cs", ".swift",
	".kt", ".rs", ".vue", ".svelte", ".json", ".xml", ".yaml", ".yml", ".toml",
	".ini", ".cfg", ".conf", ".env", ".sh", ".bat", ".ps1", ".sql", ".r", ".m",
	".scala", ".clj", ".hs", ".elm", ".dart", ".lua", ".pl", ".pm", ".tcl",
}

// Options controls expansion.
type Options struct {
	Recursive  bool
	Extensions []string
	// Exclude holds glob patterns; "**/" prefixed patterns also match the
	// base name at any depth.
	Exclude []string
	// SkipPrefix skips walked or globbed files whose name already starts
	// with the output prefix. Files named explicitly are always kept.
	SkipPrefix string
}

// Result is the expanded file list.
type Result struct {
	Files    []string
	Warnings []string
}

type expander struct {
	opts Options
	exts map[string]bool
	seen map[string]bool
	res  Result
}

// Expand resolves args into a sorted, de-duplicated list of files.
func Expand(args []string, opts Options) (Result, error) {
	if opts.Extensions == nil {
		opts.Extensions = DefaultExtensions
	}
	e := &expander{
		opts: opts,
		exts: make(map[string]bool, len(opts.Extensions)),
		seen: make(map[string]bool),
	}
	for _, ext := range opts.Extensions {
		e.exts[strings.ToLower(ext)] = true
	}

	for _, arg := range args {
		e.expandArg(arg)
	}

	sort.Strings(e.res.Files)
	if len(e.res.Files) == 0 {
		return e.res, ErrNoFiles
	}
	return e.res, nil
}

func (e *expander) expandArg(arg string) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && info.Mode().IsRegular():
		e.add(arg, true)
	case err == nil && info.IsDir():
		e.expandDir(arg)
	default:
		matches, gerr := filepath.Glob(arg)
		if gerr != nil {
			e.warnf("invalid pattern %s: %v", arg, gerr)
			return
		}
		if len(matches) == 0 {
			e.warnf("no files found matching pattern: %s", arg)
			return
		}
		hiddenOK := strings.HasPrefix(filepath.Base(arg), ".")
		for _, m := range matches {
			if !hiddenOK && strings.HasPrefix(filepath.Base(m), ".") {
				continue
			}
			mi, err := os.Stat(m)
			if err != nil {
				continue
			}
			if mi.IsDir() {
				e.expandDir(m)
				continue
			}
			if mi.Mode().IsRegular() {
				e.add(m, false)
			}
		}
	}
}

func (e *expander) expandDir(dir string) {
	if !e.opts.Recursive {
		e.warnf("%s is a directory. Use --recursive to process directories.", dir)
		return
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.warnf("walking %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != "" && !e.exts[ext] {
			return nil
		}
		e.add(path, false)
		return nil
	})
	if err != nil {
		e.warnf("walking %s: %v", dir, err)
	}
}

func (e *expander) add(path string, explicit bool) {
	if !explicit && e.opts.SkipPrefix != "" && strings.HasPrefix(filepath.Base(path), e.opts.SkipPrefix) {
		return
	}
	if Excluded(path, e.opts.Exclude) {
		return
	}
	clean := filepath.Clean(path)
	if e.seen[clean] {
		return
	}
	e.seen[clean] = true
	e.res.Files = append(e.res.Files, clean)
}

func (e *expander) warnf(format string, args ...any) {
	e.res.Warnings = append(e.res.Warnings, fmt.Sprintf(format, args...))
}

// Excluded checks if a file path matches any of the exclude patterns.
// A "**/" prefix lets the rest of the pattern match any run of consecutive
// path segments, so "**/node_modules/*" excludes everything below any
// node_modules directory.
func Excluded(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	segs := strings.Split(slashed, "/")
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, slashed)
		if err == nil && matched {
			return true
		}
		tail, ok := strings.CutPrefix(pattern, "**/")
		if ok && matchSegments(strings.Split(tail, "/"), segs) {
			return true
		}
	}
	return false
}

// matchSegments reports whether pat matches segs[i:i+len(pat)] for some i.
// A run that stops short of the file name matches one of its parent
// directories.
func matchSegments(pat, segs []string) bool {
	for i := 0; i+len(pat) <= len(segs); i++ {
		ok := true
		for j, p := range pat {
			matched, err := filepath.Match(p, segs[i+j])
			if err != nil || !matched {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
