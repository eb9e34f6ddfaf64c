package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/akscan/internal/gitctx"
	"github.com/dshills/akscan/internal/scan"
)

const testToken = "AKIAABCDEFGHIJKLMNO1"

func detectedReport() *Report {
	return &Report{
		Tool:    Tool,
		Version: "1.0",
		RunID:   "test-run",
		Repo:    RepoInfo{Root: "/tmp/repo", Head: "abc123", Branch: "main"},
		Status:  StatusDetected,
		Finding: &scan.Detection{Token: testToken, Path: "conf/aws.ini", Commit: "deadbeef", Ref: "main"},
		Stats:   scan.Stats{Refs: 2, Commits: 5, CommitsSkipped: 1, Files: 12, Inspected: 7, CacheHits: 5},
		Timing:  Timing{TotalMs: 42},
	}
}

func cleanReport() *Report {
	return &Report{
		Tool:    Tool,
		Version: "1.0",
		RunID:   "test-run",
		Repo:    RepoInfo{Root: "/tmp/repo", Branch: "main"},
		Status:  StatusClean,
		Stats:   scan.Stats{Refs: 1, Commits: 3, Files: 4, Inspected: 2, CacheHits: 2},
	}
}

func TestBuildReport(t *testing.T) {
	meta := gitctx.RepoMeta{Root: "/tmp/repo", Head: "abc123", Branch: "main"}
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	clean := BuildReport("1.0", meta, &scan.Result{Stats: scan.Stats{Commits: 3, Duration: 1500 * time.Millisecond}}, started)
	if clean.Status != StatusClean {
		t.Errorf("Status = %q, want %q", clean.Status, StatusClean)
	}
	if clean.Finding != nil {
		t.Error("clean report should have no finding")
	}
	if clean.Timing.TotalMs != 1500 {
		t.Errorf("TotalMs = %d, want 1500", clean.Timing.TotalMs)
	}
	if clean.Timing.StartedAt.Location() != time.UTC {
		t.Error("StartedAt should be UTC")
	}
	if _, err := uuid.Parse(clean.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", clean.RunID, err)
	}
	if clean.Repo.Branch != "main" || clean.Repo.Head != "abc123" {
		t.Errorf("Repo = %+v", clean.Repo)
	}

	det := &scan.Detection{Token: testToken, Path: "a.txt", Commit: "c1", Ref: "main"}
	detected := BuildReport("1.0", meta, &scan.Result{Detection: det}, started)
	if detected.Status != StatusDetected {
		t.Errorf("Status = %q, want %q", detected.Status, StatusDetected)
	}
	if detected.Finding == det {
		t.Error("report should hold its own copy of the detection")
	}
	if detected.RunID == clean.RunID {
		t.Error("each report should get a fresh run id")
	}
}

func TestReport_Redacted(t *testing.T) {
	r := detectedReport()
	red := r.Redacted()
	if red.Finding.Token == testToken {
		t.Error("token should be masked")
	}
	if !strings.HasPrefix(red.Finding.Token, "AKIA") {
		t.Errorf("masked token %q should keep its prefix", red.Finding.Token)
	}
	if r.Finding.Token != testToken {
		t.Error("Redacted must not modify the original report")
	}
	if cleanReport().Redacted().Finding != nil {
		t.Error("clean report stays without a finding")
	}
}

func TestReport_RedactedMasksTokenInPathAndRef(t *testing.T) {
	r := detectedReport()
	r.Finding.Path = "keys/" + testToken + ".txt"
	r.Finding.Ref = "leak-" + testToken
	red := r.Redacted()
	if strings.Contains(red.Finding.Path, testToken) {
		t.Errorf("Path = %q still holds the token", red.Finding.Path)
	}
	if strings.Contains(red.Finding.Ref, testToken) {
		t.Errorf("Ref = %q still holds the token", red.Finding.Ref)
	}
	if want := "keys/" + red.Finding.Token + ".txt"; red.Finding.Path != want {
		t.Errorf("Path = %q, want %q", red.Finding.Path, want)
	}
	if msg := red.Finding.Message(); strings.Contains(msg, testToken) {
		t.Errorf("message leaks the token: %s", msg)
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "sarif"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("markdown"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	var stdout strings.Builder
	if err := WriteReport(detectedReport(), "json", path, &stdout); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Error("nothing should be written to stdout when outPath is set")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), `"status": "detected"`) {
		t.Errorf("unexpected report file:\n%s", data)
	}
}

func TestWriteReport_ToStdout(t *testing.T) {
	var stdout strings.Builder
	if err := WriteReport(cleanReport(), "text", "", &stdout); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if !strings.Contains(stdout.String(), "No access keys found") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestWriteReport_Errors(t *testing.T) {
	var stdout strings.Builder
	if err := WriteReport(cleanReport(), "xml", "", &stdout); err == nil {
		t.Error("expected error for unsupported format")
	}
	bad := filepath.Join(t.TempDir(), "missing", "report.json")
	if err := WriteReport(cleanReport(), "json", bad, &stdout); err == nil {
		t.Error("expected error for unwritable path")
	}
}
