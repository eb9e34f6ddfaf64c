package gitctx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrDirtyWorktree is returned when a checkout would overwrite local work.
var ErrDirtyWorktree = errors.New("worktree has local changes")

// GoGit implements Repo with go-git. Its branch lines mimic the layout of
// `git branch --all` so both backends feed the same ref cleaning.
//
// go-git checkouts are hard resets: they discard edits to tracked files and
// delete untracked and ignored files. GoGit therefore refuses to move HEAD
// unless the worktree holds nothing but tracked, unmodified files.
type GoGit struct {
	repo  *git.Repository
	root  string
	clean bool // worktree verified clean, only GoGit has touched it since
	moved bool // a checkout succeeded
}

// OpenGoGit opens the repository containing dir.
func OpenGoGit(dir string) (*GoGit, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	return &GoGit{repo: repo, root: wt.Filesystem.Root()}, nil
}

// ListRefs lists local branches, remote branches and tags, each sorted by name.
func (g *GoGit) ListRefs(ctx context.Context) ([]string, []string, error) {
	head, err := g.repo.Head()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	refs, err := g.repo.References()
	if err != nil {
		return nil, nil, fmt.Errorf("listing references: %w", err)
	}

	var local, remote, tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			short := name.Short()
			if head != nil && head.Name() == name {
				short = "* " + short
			}
			local = append(local, short)
		case name.IsRemote():
			line := "remotes/" + name.Short()
			if ref.Type() == plumbing.SymbolicReference {
				line += " -> " + ref.Target().Short()
			}
			remote = append(remote, line)
		case name.IsTag():
			tags = append(tags, name.Short())
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listing references: %w", err)
	}

	sort.Slice(local, func(i, j int) bool { return trimMarker(local[i]) < trimMarker(local[j]) })
	sort.Strings(remote)
	sort.Strings(tags)

	var branches []string
	if head != nil && !head.Name().IsBranch() {
		branches = append(branches, fmt.Sprintf("* (HEAD detached at %s)", head.Hash().String()[:7]))
	}
	branches = append(branches, local...)
	branches = append(branches, remote...)
	return branches, tags, nil
}

// Checkout checks out the commit rev resolves to, detaching HEAD. It fails
// with ErrDirtyWorktree before touching anything when local work would be lost.
func (g *GoGit) Checkout(ctx context.Context, rev string) error {
	hash, err := g.resolve(rev)
	if err != nil {
		return err
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := g.ensureClean(wt); err != nil {
		return fmt.Errorf("checkout %s: %w", rev, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("checkout %s: %w", rev, err)
	}
	g.moved = true
	return nil
}

// ensureClean verifies once that a hard reset cannot lose anything.
func (g *GoGit) ensureClean(wt *git.Worktree) error {
	if g.clean {
		return nil
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("worktree status: %w", err)
	}
	if !status.IsClean() {
		var dirty []string
		for path, st := range status {
			if st.Worktree != git.Unmodified || st.Staging != git.Unmodified {
				dirty = append(dirty, path)
			}
		}
		sort.Strings(dirty)
		return fmt.Errorf("%w: %s", ErrDirtyWorktree, dirty[0])
	}
	// Status hides ignored files, which a hard reset deletes too.
	untracked, err := g.firstUntracked()
	if err != nil {
		return err
	}
	if untracked != "" {
		return fmt.Errorf("%w: untracked %s", ErrDirtyWorktree, untracked)
	}
	g.clean = true
	return nil
}

// firstUntracked returns the first file under the root that is not in the
// index, ignored files included, or "" when there is none.
func (g *GoGit) firstUntracked() (string, error) {
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("reading index: %w", err)
	}
	tracked := make(map[string]struct{}, len(idx.Entries))
	for _, e := range idx.Entries {
		tracked[e.Name] = struct{}{}
	}

	var found string
	err = filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == g.root {
			return nil
		}
		rel, err := filepath.Rel(g.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		_, ok := tracked[rel]
		if d.IsDir() {
			if d.Name() == ".git" || ok { // ok: submodule
				return filepath.SkipDir
			}
			return nil
		}
		if !ok {
			found = rel
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking worktree: %w", err)
	}
	return found, nil
}

// LogFullHistory walks every parent of rev ordered by committer time, then
// reverses the walk so the oldest commit comes first.
func (g *GoGit) LogFullHistory(ctx context.Context, rev string) ([]string, error) {
	hash, err := g.resolve(rev)
	if err != nil {
		return nil, err
	}
	iter, err := g.repo.Log(&git.LogOptions{From: hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", rev, err)
	}
	defer iter.Close()

	var commits []string
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c.Hash.String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", rev, err)
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// Meta reports the worktree root and the current HEAD.
func (g *GoGit) Meta(ctx context.Context) (RepoMeta, error) {
	meta := RepoMeta{Root: g.root}
	head, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return meta, nil // new repo with no commits
		}
		return RepoMeta{}, fmt.Errorf("resolving HEAD: %w", err)
	}
	meta.Head = head.Hash().String()
	meta.Branch = "HEAD"
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	}
	return meta, nil
}

// Restore checks out the branch in meta, or its commit when HEAD was detached.
// It does nothing when GoGit never moved HEAD.
func (g *GoGit) Restore(ctx context.Context, meta RepoMeta) error {
	if !g.moved {
		return nil
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	opts := &git.CheckoutOptions{Force: true}
	switch {
	case !meta.Detached():
		opts.Branch = plumbing.NewBranchReferenceName(meta.Branch)
	case meta.Head != "":
		opts.Hash = plumbing.NewHash(meta.Head)
	default:
		return nil
	}
	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("restoring HEAD: %w", err)
	}
	return nil
}

func (g *GoGit) resolve(rev string) (plumbing.Hash, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving %s: %w", rev, err)
	}
	return *hash, nil
}

func trimMarker(line string) string {
	if len(line) > 2 && line[:2] == "* " {
		return line[2:]
	}
	return line
}
