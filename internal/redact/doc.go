// Package redact masks detected tokens in written reports.
//
// Masking keeps a short prefix and suffix of the token for triage and
// replaces everything in between with '*'. Tokens too short to keep any
// characters are replaced with a fixed placeholder.
package redact
