package output

import (
	"time"

	"github.com/dshills/codesan/internal/sanitizer"
)

func sampleReport() *sanitizer.Report {
	results := []sanitizer.FileResult{
		{
			Input:        "app.py",
			Output:       "sanitized_app.py",
			Success:      true,
			Replacements: 3,
			ByCategory:   map[string]int{"api_keys": 1, "emails": 2},
			Lines:        12,
			CharsRemoved: 40,
			Encoding:     "utf-8",
		},
		{
			Input:            "done.py",
			Output:           "sanitized_done.py",
			Success:          true,
			AlreadySanitized: true,
			Lines:            4,
		},
		{
			Input: "broken.py",
			Error: "reading file: permission denied",
		},
	}
	r := sanitizer.BuildReport("1.0", sanitizer.InputInfo{
		Args:       []string{"."},
		Categories: []string{"api_keys", "emails"},
		Prefix:     "sanitized_",
	}, results, []string{"no files found matching pattern: *.rb"}, time.Now())
	r.Timing.TotalMs = 42
	return r
}
