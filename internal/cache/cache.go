package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the SHA-256 digest of a file's raw bytes.
type Fingerprint [sha256.Size]byte

// FingerprintOf hashes content.
func FingerprintOf(content []byte) Fingerprint {
	return sha256.Sum256(content)
}

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FileSet is the set of content fingerprints already classified as clean.
type FileSet struct {
	entries map[Fingerprint]struct{}
}

// NewFileSet returns an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{entries: make(map[Fingerprint]struct{})}
}

// Seen reports whether fp was marked clean earlier in the run.
func (s *FileSet) Seen(fp Fingerprint) bool {
	_, ok := s.entries[fp]
	return ok
}

// Mark records fp as clean. Callers mark only after the detector cleared
// the content.
func (s *FileSet) Mark(fp Fingerprint) {
	s.entries[fp] = struct{}{}
}

// Len returns the number of distinct fingerprints marked.
func (s *FileSet) Len() int {
	return len(s.entries)
}

// CommitSet is the set of commit ids already fully scanned.
type CommitSet struct {
	entries map[string]struct{}
}

// NewCommitSet returns an empty CommitSet.
func NewCommitSet() *CommitSet {
	return &CommitSet{entries: make(map[string]struct{})}
}

// Seen reports whether commit was scanned earlier in the run.
func (s *CommitSet) Seen(commit string) bool {
	_, ok := s.entries[commit]
	return ok
}

// Mark records commit as scanned.
func (s *CommitSet) Mark(commit string) {
	s.entries[commit] = struct{}{}
}

// Len returns the number of commits marked.
func (s *CommitSet) Len() int {
	return len(s.entries)
}
