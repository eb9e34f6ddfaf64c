// Package detect decides whether raw file content carries something shaped
// like a leaked access key ID or secret.
//
// Detection is a single token-shape heuristic: the first run of 16 to 30
// ASCII letters and digits bounded by word boundaries. That first candidate
// is dismissed when it is on the allowlist, when it is all digits, or when
// it is all letters. Only the first candidate in the content is evaluated;
// a later candidate in the same content is never inspected.
package detect
