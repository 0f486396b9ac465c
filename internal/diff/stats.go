// ABOUTME: Line-level summary of unified diff text
// ABOUTME: Counts touched files and added/removed lines for previews and logs

// Package diff summarizes unified diff output produced by git.
package diff

import (
	"fmt"
	"strings"
)

// Stats summarizes a unified diff
type Stats struct {
	Files   []string
	Added   int
	Removed int
}

// Summarize scans git diff output and tallies files and changed lines.
// "---" and "+++" lines are file headers only before the first hunk of a file.
func Summarize(text string) Stats {
	var stats Stats
	inHunk := false

	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(line, "diff --git "):
			stats.Files = append(stats.Files, headerPath(line))
			inHunk = false
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
			// index, mode, rename and ---/+++ headers
		case strings.HasPrefix(line, "+"):
			stats.Added++
		case strings.HasPrefix(line, "-"):
			stats.Removed++
		}
	}

	return stats
}

// String renders the stats the way git diff --shortstat does
func (s Stats) String() string {
	return fmt.Sprintf("%d %s changed, %d %s(+), %d %s(-)",
		len(s.Files), plural(len(s.Files), "file", "files"),
		s.Added, plural(s.Added, "insertion", "insertions"),
		s.Removed, plural(s.Removed, "deletion", "deletions"))
}

// headerPath extracts the b/ side of a "diff --git a/x b/x" header
func headerPath(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+len(" b/"):]
	}
	return rest
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
