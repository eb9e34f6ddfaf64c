package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintOf(t *testing.T) {
	f1 := FingerprintOf([]byte("test"))
	f2 := FingerprintOf([]byte("test"))
	f3 := FingerprintOf([]byte("other"))

	assert.Equal(t, f1, f2, "same input should produce same fingerprint")
	assert.NotEqual(t, f1, f3, "different input should produce different fingerprint")
	assert.Len(t, f1.String(), 64)
	assert.Equal(t, "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", f1.String())
}

func TestFileSet_SeenMark(t *testing.T) {
	s := NewFileSet()
	fp := FingerprintOf([]byte("package main\n"))

	require.False(t, s.Seen(fp), "expected miss before mark")
	s.Mark(fp)
	require.True(t, s.Seen(fp), "expected hit after mark")

	// Marking again is a no-op.
	s.Mark(fp)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Seen(fp), "Seen does not change the set")
	assert.Equal(t, 1, s.Len())
}

func TestFileSet_ContentNotPath(t *testing.T) {
	s := NewFileSet()
	s.Mark(FingerprintOf([]byte("same bytes")))

	// Identity is the content alone, wherever it was read from.
	assert.True(t, s.Seen(FingerprintOf([]byte("same bytes"))))
	assert.False(t, s.Seen(FingerprintOf([]byte("same bytes\n"))))
}

func TestFileSet_EmptyContent(t *testing.T) {
	s := NewFileSet()
	s.Mark(FingerprintOf(nil))
	assert.True(t, s.Seen(FingerprintOf([]byte{})))
}

func TestCommitSet(t *testing.T) {
	s := NewCommitSet()
	assert.False(t, s.Seen("abc"))
	s.Mark("abc")
	s.Mark("abc")
	s.Mark("def")
	assert.True(t, s.Seen("abc"))
	assert.True(t, s.Seen("def"))
	assert.False(t, s.Seen("ghi"))
	assert.Equal(t, 2, s.Len())
}
