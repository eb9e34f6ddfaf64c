package detect

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func randomToken(r *rand.Rand, alphabet string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		found   bool
	}{
		{"aws key id", `aws_access_key_id = "AKIAABCDEFGHIJKLMNO1"`, "AKIAABCDEFGHIJKLMNO1", true},
		{"all digits", "12345678901234567890", "", false},
		{"all letters", "abcdefghijklmnopqrst", "", false},
		{"allowlisted", "...leftSmallThan100G...", "", false},
		{"too short", "id: abc123def456ghi", "", false},
		{"too long", "id: " + strings.Repeat("a1", 16), "", false},
		{"exactly min length", "x = Ab3456789012345z", "Ab3456789012345z", true},
		{"exactly max length", "x = " + strings.Repeat("a1", 15), strings.Repeat("a1", 15), true},
		{"underscore glued", "key_AKIAABCDEFGHIJKLMNO1", "", false},
		{"empty", "", "", false},
		{"plain prose", "just some normal code with short words", "", false},
		{"binary framing", "\x00\x01AKIAABCDEFGHIJKLMNO1\x00", "AKIAABCDEFGHIJKLMNO1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Detect([]byte(tt.content))
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_FirstCandidateOnly(t *testing.T) {
	// The first candidate is dismissed, so the real key after it is missed.
	content := "version abcdefghijklmnopqrst\nsecret AKIAABCDEFGHIJKLMNO1\n"
	_, found := Detect([]byte(content))
	assert.False(t, found)

	content = "version 1234567890123456789\nsecret AKIAABCDEFGHIJKLMNO1\n"
	_, found = Detect([]byte(content))
	assert.False(t, found)

	content = "leftSmallThan100G AKIAABCDEFGHIJKLMNO1"
	_, found = Detect([]byte(content))
	assert.False(t, found)
}

func TestDetect_NoQualifyingRun(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		// Runs of at most 15 word characters separated by spaces.
		var parts []string
		for j := 0; j < 10; j++ {
			parts = append(parts, randomToken(r, digits+letters, 1+r.Intn(15)))
		}
		content := strings.Join(parts, " ")
		_, found := Detect([]byte(content))
		require.False(t, found, "content %q", content)
	}
}

func TestDetect_NumericAndAlphabeticTokensDismissed(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for n := MinTokenLen; n <= MaxTokenLen; n++ {
		num := randomToken(r, digits, n)
		_, found := Detect([]byte("id=" + num + ";"))
		assert.False(t, found, "numeric token %q", num)

		word := randomToken(r, letters, n)
		_, found = Detect([]byte("name " + word + "\n"))
		assert.False(t, found, "alphabetic token %q", word)
	}
}

func TestDetect_MixedTokensFlagged(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	for n := MinTokenLen; n <= MaxTokenLen; n++ {
		tok := randomToken(r, letters, n-1) + "7"
		tok = tok[n/2:] + tok[:n/2]
		got, found := Detect([]byte("key: '" + tok + "'"))
		require.True(t, found, "token %q", tok)
		assert.Equal(t, tok, got)
	}
}

func TestClassify(t *testing.T) {
	d := New()
	assert.Equal(t, VerdictAllowlisted, d.Classify("leftSmallThan100G"))
	assert.Equal(t, VerdictNumeric, d.Classify("12345678901234567890"))
	assert.Equal(t, VerdictAlphabetic, d.Classify("abcdefghijklmnopqrst"))
	assert.Equal(t, VerdictPositive, d.Classify("AKIAABCDEFGHIJKLMNO1"))
}

func TestNew_ExtraAllowlist(t *testing.T) {
	d := New("AKIAABCDEFGHIJKLMNO1", "")
	_, found := d.Detect([]byte("AKIAABCDEFGHIJKLMNO1"))
	assert.False(t, found)
	assert.Equal(t, VerdictAllowlisted, d.Classify("leftSmallThan100G"), "built-in entries stay in place")

	// The package-level detector is unaffected.
	_, found = Detect([]byte("AKIAABCDEFGHIJKLMNO1"))
	assert.True(t, found)
}

func TestCandidate(t *testing.T) {
	tok, ok := Candidate([]byte("a abcdefghijklmnopqrst b"))
	require.True(t, ok)
	assert.Equal(t, "abcdefghijklmnopqrst", tok)

	_, ok = Candidate([]byte("short words only"))
	assert.False(t, ok)
}
