package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dshills/akscan/internal/cache"
)

// Options tunes a scan. The zero value inspects every regular file under
// the current directory and treats any read failure as fatal.
type Options struct {
	// Root is the working tree directory whose files are read.
	Root string
	// Exclude holds gitignore-style patterns for paths never read.
	Exclude []string
	// SkipBinary skips detection for content with a known binary signature.
	SkipBinary bool
	// SkipUnreadable logs and skips files that cannot be read.
	SkipUnreadable bool
}

// Detection is a file whose content looks like it holds an access key.
type Detection struct {
	Token  string `json:"token"`
	Path   string `json:"path"`
	Commit string `json:"commit"`
	Ref    string `json:"ref"`
}

// Message describes the detection the way the scan reports it.
func (d *Detection) Message() string {
	return fmt.Sprintf("%s in commit %s of branch %s may contain access-key ID/Secret", d.Path, d.Commit, d.Ref)
}

// Stats counts the work done by a run.
type Stats struct {
	Refs           int           `json:"refs"`
	Commits        int           `json:"commits"`
	CommitsSkipped int           `json:"commitsSkipped"`
	Files          int           `json:"files"`
	Inspected      int           `json:"inspected"`
	CacheHits      int           `json:"cacheHits"`
	Excluded       int           `json:"excluded"`
	Binary         int           `json:"binary"`
	Unreadable     int           `json:"unreadable"`
	Duration       time.Duration `json:"duration"`
}

// Result is the outcome of a completed run. Detection is nil when every
// commit was scanned clean.
type Result struct {
	Detection *Detection `json:"detection,omitempty"`
	Stats     Stats      `json:"stats"`
}

// Clean reports whether the run finished without a detection.
func (r *Result) Clean() bool {
	return r.Detection == nil
}

// Scanner drives a full history scan.
type Scanner struct {
	oracle   Oracle
	detector Detector
	opts     Options
	exclude  *ignore.GitIgnore
	logger   *slog.Logger
}

// New returns a Scanner. A nil logger discards log output.
func New(o Oracle, d Detector, opts Options, logger *slog.Logger) *Scanner {
	if opts.Root == "" {
		opts.Root = "."
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var exclude *ignore.GitIgnore
	if len(opts.Exclude) > 0 {
		exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}
	return &Scanner{
		oracle:   o,
		detector: d,
		opts:     opts,
		exclude:  exclude,
		logger:   logger,
	}
}

// Run scans every commit of every ref and returns at the first detection.
// Oracle and read failures abort the run. Caches start empty on every call.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}
	defer func() { res.Stats.Duration = time.Since(start) }()

	refs, err := EnumerateRefs(ctx, s.oracle)
	if err != nil {
		return nil, fmt.Errorf("listing refs: %w", err)
	}
	res.Stats.Refs = len(refs)

	commits := cache.NewCommitSet()
	cs := &CommitScanner{
		oracle:   s.oracle,
		detector: s.detector,
		files:    cache.NewFileSet(),
		root:     s.opts.Root,
		exclude:  s.exclude,
		opts:     s.opts,
		logger:   s.logger,
		stats:    &res.Stats,
	}
	walker := NewWalker(s.oracle)

	for _, ref := range refs {
		s.logger.Info("checking branch/tag", "ref", ref)
		history, err := walker.History(ctx, ref)
		if err != nil {
			return nil, err
		}

		for _, commit := range history {
			if commits.Seen(commit) {
				res.Stats.CommitsSkipped++
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			s.logger.Info("checking commit", "commit", commit)
			det, err := cs.Scan(ctx, commit)
			if err != nil {
				return nil, err
			}
			res.Stats.Commits++
			if det != nil {
				det.Ref = ref
				res.Detection = det
				return res, nil
			}
			commits.Mark(commit)
		}
	}
	return res, nil
}
