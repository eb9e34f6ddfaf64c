package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/akscan/internal/gitctx"
	"github.com/dshills/akscan/internal/redact"
	"github.com/dshills/akscan/internal/scan"
)

// Tool is the name reported in every output format.
const Tool = "akscan"

// Status is the overall outcome of a run.
type Status string

const (
	StatusClean    Status = "clean"
	StatusDetected Status = "detected"
)

// RepoInfo describes the scanned repository as it was before the run.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Timing records when the run started and how long it took.
type Timing struct {
	StartedAt time.Time `json:"startedAt"`
	TotalMs   int64     `json:"totalMs"`
}

// Report is the serializable outcome of one scan.
type Report struct {
	Tool    string          `json:"tool"`
	Version string          `json:"version"`
	RunID   string          `json:"runId"`
	Repo    RepoInfo        `json:"repo"`
	Status  Status          `json:"status"`
	Finding *scan.Detection `json:"finding,omitempty"`
	Stats   scan.Stats      `json:"stats"`
	Timing  Timing          `json:"timing"`
}

// BuildReport assembles a report for res with a fresh run id.
func BuildReport(version string, meta gitctx.RepoMeta, res *scan.Result, started time.Time) *Report {
	r := &Report{
		Tool:    Tool,
		Version: version,
		RunID:   uuid.NewString(),
		Repo:    RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch},
		Status:  StatusClean,
		Stats:   res.Stats,
		Timing: Timing{
			StartedAt: started.UTC(),
			TotalMs:   res.Stats.Duration.Milliseconds(),
		},
	}
	if res.Detection != nil {
		d := *res.Detection
		r.Finding = &d
		r.Status = StatusDetected
	}
	return r
}

// Redacted returns a copy of the report with the finding's token masked,
// including occurrences inside its path and ref.
func (r *Report) Redacted() *Report {
	cp := *r
	if r.Finding != nil {
		d := *r.Finding
		d.Path = redact.Text(d.Path, d.Token)
		d.Ref = redact.Text(d.Ref, d.Token)
		d.Token = redact.Token(d.Token)
		cp.Finding = &d
	}
	return &cp
}
