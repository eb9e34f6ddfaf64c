package detect

import (
	regexp "github.com/wasilibs/go-re2"
)

// Token length bounds for a candidate key.
const (
	MinTokenLen = 16
	MaxTokenLen = 30
)

var (
	// tokenPattern matches access-key shaped words. \b is an ASCII word
	// boundary, so an underscore glued to the run disqualifies it.
	tokenPattern   = regexp.MustCompile(`\b[0-9a-zA-Z]{16,30}\b`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	alphaPattern   = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// builtinAllowlist holds known-benign tokens that look like keys.
var builtinAllowlist = []string{
	"leftSmallThan100G",
}

// Verdict explains how a candidate token was classified.
type Verdict string

const (
	VerdictPositive    Verdict = "positive"
	VerdictAllowlisted Verdict = "allowlisted"
	VerdictNumeric     Verdict = "numeric"
	VerdictAlphabetic  Verdict = "alphabetic"
)

// Detector applies the token heuristic with a fixed allowlist.
type Detector struct {
	allow map[string]struct{}
}

// New returns a Detector whose allowlist is the built-in set plus extra.
// Empty extra entries are ignored.
func New(extra ...string) *Detector {
	allow := make(map[string]struct{}, len(builtinAllowlist)+len(extra))
	for _, tok := range builtinAllowlist {
		allow[tok] = struct{}{}
	}
	for _, tok := range extra {
		if tok != "" {
			allow[tok] = struct{}{}
		}
	}
	return &Detector{allow: allow}
}

// Candidate returns the first access-key shaped token in content, if any.
func Candidate(content []byte) (string, bool) {
	m := tokenPattern.Find(content)
	if m == nil {
		return "", false
	}
	return string(m), true
}

// Classify reports why token would or would not be flagged.
func (d *Detector) Classify(token string) Verdict {
	if _, ok := d.allow[token]; ok {
		return VerdictAllowlisted
	}
	if numericPattern.MatchString(token) {
		return VerdictNumeric
	}
	if alphaPattern.MatchString(token) {
		return VerdictAlphabetic
	}
	return VerdictPositive
}

// Detect returns the offending token when content looks like it holds a
// key. Only the first candidate is considered: if it is dismissed, the
// content is clean even when a later candidate would have been flagged.
func (d *Detector) Detect(content []byte) (string, bool) {
	tok, ok := Candidate(content)
	if !ok {
		return "", false
	}
	if d.Classify(tok) != VerdictPositive {
		return "", false
	}
	return tok, true
}

var defaultDetector = New()

// Detect runs the heuristic with only the built-in allowlist.
func Detect(content []byte) (string, bool) {
	return defaultDetector.Detect(content)
}
