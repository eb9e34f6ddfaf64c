package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dshills/akscan/internal/cache"
)

// gitDir is the metadata directory never descended into.
const gitDir = ".git"

// magicBytes is how much of a file filetype needs to recognise it.
const magicBytes = 262

// Detector classifies raw file content.
type Detector interface {
	Detect(content []byte) (token string, found bool)
}

// CommitScanner scans the materialized tree of one commit at a time.
type CommitScanner struct {
	oracle   Oracle
	detector Detector
	files    *cache.FileSet
	root     string
	exclude  *ignore.GitIgnore
	opts     Options
	logger   *slog.Logger
	stats    *Stats
}

// Scan checks commit out and inspects every regular file under the root.
// It returns the first positive detection, or nil when the tree is clean.
func (s *CommitScanner) Scan(ctx context.Context, commit string) (*Detection, error) {
	if err := s.oracle.Checkout(ctx, commit); err != nil {
		return nil, fmt.Errorf("checking out %s: %w", commit, err)
	}

	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	for _, rel := range files {
		s.stats.Files++
		content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			if s.opts.SkipUnreadable {
				s.logger.Warn("skipping unreadable file", "path", rel, "commit", commit, "error", err)
				s.stats.Unreadable++
				continue
			}
			return nil, fmt.Errorf("reading %s in commit %s: %w", rel, commit, err)
		}

		fp := cache.FingerprintOf(content)
		if s.files.Seen(fp) {
			s.stats.CacheHits++
			s.logger.Debug("content already checked", "path", rel, "fingerprint", fp.String())
			continue
		}

		if s.opts.SkipBinary && isBinaryContent(content) {
			s.stats.Binary++
			s.files.Mark(fp)
			continue
		}

		s.stats.Inspected++
		if token, found := s.detector.Detect(content); found {
			return &Detection{Token: token, Path: rel, Commit: commit}, nil
		}
		s.logger.Debug("content clean", "path", rel, "fingerprint", fp.String())
		s.files.Mark(fp)
	}
	return nil, nil
}

// listFiles walks the root and returns the slash-separated relative paths
// of regular files, skipping .git directories at any depth and excluded
// paths.
func (s *CommitScanner) listFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if s.opts.SkipUnreadable && path != s.root {
				s.logger.Warn("skipping unreadable path", "path", path, "error", err)
				s.stats.Unreadable++
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}
		if path == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == gitDir {
				return filepath.SkipDir
			}
			if s.excluded(rel) {
				s.stats.Excluded++
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks and other special files are not content.
		if !d.Type().IsRegular() {
			return nil
		}
		if s.excluded(rel) {
			s.stats.Excluded++
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}
	return files, nil
}

func (s *CommitScanner) excluded(rel string) bool {
	return s.exclude != nil && s.exclude.MatchesPath(rel)
}

// isBinaryContent checks if content is binary using magic bytes detection.
func isBinaryContent(content []byte) bool {
	head := content
	if len(head) > magicBytes {
		head = head[:magicBytes]
	}
	kind, _ := filetype.Match(head)
	return kind != filetype.Unknown
}
