package output

import "fmt"

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("Completed in %dms", ms)
	}
	return fmt.Sprintf("Completed in %.1fs", float64(ms)/1000)
}
