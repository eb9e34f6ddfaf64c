package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	s := report.Stats

	ew.println("akscan history scan")
	ew.printf("Repository: %s", report.Repo.Root)
	if report.Repo.Branch != "" {
		ew.printf(" (branch: %s)", report.Repo.Branch)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Refs: %d | Commits: %d scanned, %d already seen\n", s.Refs, s.Commits, s.CommitsSkipped)
	ew.printf("Files: %d | Inspected: %d | Cached: %d\n", s.Files, s.Inspected, s.CacheHits)
	if s.Excluded+s.Binary+s.Unreadable > 0 {
		ew.printf("Skipped: %d excluded, %d binary, %d unreadable\n", s.Excluded, s.Binary, s.Unreadable)
	}
	ew.println(strings.Repeat("─", 60))

	if report.Finding == nil {
		ew.println("\nNo access keys found.")
	} else {
		f := report.Finding
		ew.println("\n[!!] POSSIBLE ACCESS KEY")
		ew.println(strings.Repeat("─", 40))
		ew.printf("  File:   %s\n", f.Path)
		ew.printf("  Commit: %s\n", f.Commit)
		ew.printf("  Ref:    %s\n", f.Ref)
		ew.printf("  Token:  %s\n", f.Token)
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (run %s)\n", report.Timing.TotalMs, report.RunID)

	return ew.err
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
