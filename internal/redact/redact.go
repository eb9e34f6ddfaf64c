package redact

import "strings"

const placeholder = "[REDACTED]"

// Visible prefix and suffix lengths kept by Token.
const (
	keepPrefix = 4
	keepSuffix = 2
)

// Token masks all but the first four and last two characters of tok.
func Token(tok string) string {
	if len(tok) <= keepPrefix+keepSuffix {
		return placeholder
	}
	hidden := len(tok) - keepPrefix - keepSuffix
	return tok[:keepPrefix] + strings.Repeat("*", hidden) + tok[len(tok)-keepSuffix:]
}

// Text replaces every occurrence of tok in text with its masked form.
func Text(text, tok string) string {
	if tok == "" {
		return text
	}
	return strings.ReplaceAll(text, tok, Token(tok))
}
