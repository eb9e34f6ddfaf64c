package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendAuto  = "auto"
	BackendGit   = "git"
	BackendGoGit = "go-git"
)

// Repo is a git repository the scanner can enumerate and check out.
type Repo interface {
	// ListRefs returns branch lines as `git branch --all` prints them and
	// tag names as `git tag` prints them, in git's order.
	ListRefs(ctx context.Context) (branches, tags []string, err error)
	// Checkout materializes rev in the working tree with a detached HEAD.
	Checkout(ctx context.Context, rev string) error
	// LogFullHistory returns every commit reachable from rev through any
	// parent, oldest first.
	LogFullHistory(ctx context.Context, rev string) ([]string, error)
	// Meta returns the current HEAD state.
	Meta(ctx context.Context) (RepoMeta, error)
	// Restore puts HEAD back to the state captured in meta.
	Restore(ctx context.Context, meta RepoMeta) error
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Detached reports whether HEAD pointed at a commit rather than a branch.
func (m RepoMeta) Detached() bool {
	return m.Branch == "" || m.Branch == "HEAD"
}

// Open returns the backend named by backend for the repository at dir.
func Open(backend, dir string) (Repo, error) {
	if dir == "" {
		dir = "."
	}
	switch backend {
	case BackendGit:
		return NewGit(dir), nil
	case BackendGoGit:
		return OpenGoGit(dir)
	case BackendAuto, "":
		if GitExists() {
			return NewGit(dir), nil
		}
		return OpenGoGit(dir)
	default:
		return nil, fmt.Errorf("unknown git backend: %s", backend)
	}
}

// GitExists checks if the git binary is available.
func GitExists() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Git runs the git binary in Dir.
type Git struct {
	Dir string
}

// NewGit returns a Git backend rooted at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir}
}

// ListRefs lists local and remote branches, then tags. Color and column
// settings from the user's git config are overridden so every line is a
// plain ref name.
func (g *Git) ListRefs(ctx context.Context) ([]string, []string, error) {
	out, err := g.output(ctx, "branch", "--all", "--no-color", "--no-column")
	if err != nil {
		return nil, nil, fmt.Errorf("git branch --all: %w", err)
	}
	branches := splitLines(out)

	out, err = g.output(ctx, "tag", "--no-column")
	if err != nil {
		return nil, nil, fmt.Errorf("git tag: %w", err)
	}
	return branches, splitLines(out), nil
}

// Checkout detaches HEAD at rev.
func (g *Git) Checkout(ctx context.Context, rev string) error {
	if _, err := g.output(ctx, "checkout", "--quiet", "--detach", rev); err != nil {
		return fmt.Errorf("git checkout --detach %s: %w", rev, err)
	}
	return nil
}

// LogFullHistory returns commit ids reachable from rev in reversed date order.
func (g *Git) LogFullHistory(ctx context.Context, rev string) ([]string, error) {
	out, err := g.output(ctx, "log", "--full-history", "--date-order", "--reverse", "--pretty=format:%H", rev, "--")
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", rev, err)
	}
	return splitLines(out), nil
}

// Meta collects repository metadata from git.
func (g *Git) Meta(ctx context.Context) (RepoMeta, error) {
	root, err := g.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := g.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Restore checks out the branch in meta, or its commit when HEAD was detached.
func (g *Git) Restore(ctx context.Context, meta RepoMeta) error {
	if !meta.Detached() {
		if _, err := g.output(ctx, "checkout", "--quiet", meta.Branch); err != nil {
			return fmt.Errorf("git checkout %s: %w", meta.Branch, err)
		}
		return nil
	}
	if meta.Head == "" {
		return nil
	}
	return g.Checkout(ctx, meta.Head)
}

func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// splitLines returns the trimmed, non-empty lines of out.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
