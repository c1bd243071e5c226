package sanitizer

import (
	"time"

	"github.com/google/uuid"
)

// FileResult records the outcome for one input file.
type FileResult struct {
	Input        string         `json:"input"`
	Output       string         `json:"output,omitempty"`
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Replacements int            `json:"replacements"`
	ByCategory   map[string]int `json:"byCategory,omitempty"`
	Lines        int            `json:"lines"`
	CharsRemoved int            `json:"charsRemoved"`
	Encoding     string         `json:"encoding,omitempty"`
	// AlreadySanitized is set when the whole-document guard skipped the file.
	AlreadySanitized bool `json:"alreadySanitized,omitempty"`
	Cached           bool `json:"cached,omitempty"`
	DryRun           bool `json:"dryRun,omitempty"`
}

// Summary aggregates file results.
type Summary struct {
	Files            int            `json:"files"`
	Succeeded        int            `json:"succeeded"`
	Failed           int            `json:"failed"`
	Replacements     int            `json:"replacements"`
	AlreadySanitized int            `json:"alreadySanitized"`
	ByCategory       map[string]int `json:"byCategory,omitempty"`
}

// InputInfo describes how the run was invoked.
type InputInfo struct {
	Args       []string `json:"args"`
	Categories []string `json:"categories"`
	Prefix     string   `json:"prefix"`
	DryRun     bool     `json:"dryRun,omitempty"`
}

// Timing holds run durations.
type Timing struct {
	TotalMs int64 `json:"totalMs"`
}

// Report is the full result of a run.
type Report struct {
	Tool     string       `json:"tool"`
	Version  string       `json:"version"`
	RunID    string       `json:"runId"`
	Inputs   InputInfo    `json:"inputs"`
	Summary  Summary      `json:"summary"`
	Files    []FileResult `json:"files"`
	Warnings []string     `json:"warnings,omitempty"`
	Timing   Timing       `json:"timing"`
}

// ComputeSummary aggregates results.
func ComputeSummary(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if !r.Success {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Replacements += r.Replacements
		if r.AlreadySanitized {
			s.AlreadySanitized++
		}
		for cat, n := range r.ByCategory {
			if s.ByCategory == nil {
				s.ByCategory = make(map[string]int)
			}
			s.ByCategory[cat] += n
		}
	}
	return s
}

// BuildReport assembles a report for a finished run.
func BuildReport(version string, inputs InputInfo, results []FileResult, warnings []string, start time.Time) *Report {
	if results == nil {
		results = []FileResult{}
	}
	return &Report{
		Tool:     "codesan",
		Version:  version,
		RunID:    uuid.NewString(),
		Inputs:   inputs,
		Summary:  ComputeSummary(results),
		Files:    results,
		Warnings: warnings,
		Timing: Timing{
			TotalMs: time.Since(start).Milliseconds(),
		},
	}
}

// ExitCode returns 0 when every file succeeded and 1 when any failed or
// there were no files.
func (r *Report) ExitCode() int {
	if r.Summary.Files == 0 || r.Summary.Failed > 0 {
		return 1
	}
	return 0
}
