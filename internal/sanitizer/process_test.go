package sanitizer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codesan/internal/cache"
	"github.com/dshills/codesan/internal/redact"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProcessor(t *testing.T, opts Options, c *cache.Cache) *Processor {
	t.Helper()
	return NewProcessor(redact.New(), c, opts, quietLogger())
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("src", "clean_app.py"), OutputPath(filepath.Join("src", "app.py"), "clean_"))
	assert.Equal(t, "sanitized_main.go", OutputPath("main.go", DefaultPrefix))
}

func TestProcessFile_WritesSanitizedCopy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "app.py", []byte("EMAIL = 'Contact: jane.doe@corp.io'\n"))

	p := newProcessor(t, Options{Categories: redact.Only(redact.CategoryEmails)}, nil)
	res := p.ProcessFile(context.Background(), in)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, filepath.Join(dir, "sanitized_app.py"), res.Output)
	assert.Equal(t, 1, res.Replacements)
	assert.Equal(t, map[string]int{"emails": 1}, res.ByCategory)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, 1, res.Lines)

	got, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, "EMAIL = 'Contact: user@example.com'\n", string(got))

	orig, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Contains(t, string(orig), "jane.doe@corp.io", "input must not be modified")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestProcessFile_KeepsLegacyEncoding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte("# caf\xe9 owner: bob@corp.io\n")
	in := writeFile(t, dir, "legacy.py", data)

	p := newProcessor(t, Options{Categories: redact.Only(redact.CategoryEmails)}, nil)
	res := p.ProcessFile(context.Background(), in)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "windows-1252", res.Encoding)

	got, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, []byte("# caf\xe9 owner: user@example.com\n"), got)
}

func TestProcessFile_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "a.js", []byte("// TODO: remove\n"))

	p := newProcessor(t, Options{DryRun: true}, nil)
	res := p.ProcessFile(context.Background(), in)

	require.True(t, res.Success, res.Error)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Replacements)
	_, err := os.Stat(res.Output)
	assert.True(t, os.IsNotExist(err), "dry run must not write output")
}

func TestProcessFile_AlreadySanitized(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "key = API_KEY_REDACTED\nmail = user@example.com\nhost = 192.168.1.1\nother = bob@corp.io\n"
	in := writeFile(t, dir, "done.py", []byte(content))

	p := newProcessor(t, Options{}, nil)
	res := p.ProcessFile(context.Background(), in)

	require.True(t, res.Success, res.Error)
	assert.True(t, res.AlreadySanitized)
	assert.Zero(t, res.Replacements)

	got, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestProcessFile_Cache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := cache.New(true, filepath.Join(dir, "cache"), 3600)
	require.NoError(t, err)

	in := writeFile(t, dir, "cfg.py", []byte("password = 'hunter2'\n"))
	p := newProcessor(t, Options{}, c)

	first := p.ProcessFile(context.Background(), in)
	require.True(t, first.Success, first.Error)
	assert.False(t, first.Cached)

	second := p.ProcessFile(context.Background(), in)
	require.True(t, second.Success, second.Error)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Replacements, second.Replacements)
	assert.Equal(t, first.ByCategory, second.ByCategory)

	got, err := os.ReadFile(second.Output)
	require.NoError(t, err)
	assert.Equal(t, "password =\"PASSWORD_REDACTED\"\n", string(got))
}

func TestRun_IsolatesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.py", []byte("ip = '10.0.0.1'\n"))
	missing := filepath.Join(dir, "missing.py")

	p := newProcessor(t, Options{Jobs: 2}, nil)
	results := p.Run(context.Background(), []string{missing, good})

	require.Len(t, results, 2)
	assert.Equal(t, missing, results[0].Input)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
	assert.Equal(t, good, results[1].Input)
	assert.True(t, results[1].Success, results[1].Error)

	report := BuildReport("test", InputInfo{}, results, nil, time.Now())
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Succeeded)
	assert.Equal(t, 1, report.ExitCode())
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", []byte("x"))
	b := writeFile(t, dir, "b.py", []byte("y"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newProcessor(t, Options{}, nil).Run(ctx, []string{a, b})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "canceled")
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	p := newProcessor(t, Options{Categories: redact.Only(redact.CategoryPaths)}, nil)
	var out bytes.Buffer
	res, err := p.Stream(strings.NewReader("open('/home/alice/notes.txt')\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replacements)
	assert.Equal(t, "open('/path/to/file')\n", out.String())
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"no break", "a", 1},
		{"lf", "a\nb\n", 2},
		{"lf unterminated", "a\nb", 2},
		{"crlf", "a\r\nb\r\n", 2},
		{"bare cr", "a\rb\rc", 3},
		{"mixed", "a\r\nb\rc\nd", 4},
		{"blank lines", "\n\n", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countLines(tt.in), tt.name)
	}
}

func TestProcessFile_ClassicMacLineEndings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "old.txt", []byte("one\rtwo\rthree\r"))

	res := newProcessor(t, Options{}, nil).ProcessFile(context.Background(), in)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 3, res.Lines)
}
