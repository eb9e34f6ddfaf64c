package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTextWriter_Clean(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{}
	if err := w.Write(&buf, cleanReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Repository: /tmp/repo (branch: main)",
		"Commits: 3 scanned, 0 already seen",
		"No access keys found.",
		"run test-run",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Skipped:") {
		t.Error("skip line should be omitted when nothing was skipped")
	}
}

func TestTextWriter_Detected(t *testing.T) {
	report := detectedReport()
	report.Stats.Excluded = 2
	report.Stats.Binary = 1

	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"POSSIBLE ACCESS KEY",
		"File:   conf/aws.ini",
		"Commit: deadbeef",
		"Ref:    main",
		"Token:  " + testToken,
		"Skipped: 2 excluded, 1 binary, 0 unreadable",
		"Completed in 42ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTextWriter_PropagatesWriteError(t *testing.T) {
	err := (&TextWriter{}).Write(failWriter{}, cleanReport())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected write error, got %v", err)
	}
}
