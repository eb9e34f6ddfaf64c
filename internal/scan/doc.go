// Package scan walks every commit reachable from every branch and tag of a
// repository and stops at the first file whose content looks like it holds
// an access key.
//
// A [Scanner] enumerates refs once, then for each ref checks it out and
// lists its full history oldest first. Each commit is scanned at most once
// per run, whichever ref reaches it first, and file content already cleared
// by the detector is skipped by fingerprint. Scanning is strictly
// sequential: the repository working tree is shared, and a commit's files
// are read only after its checkout has completed.
package scan
