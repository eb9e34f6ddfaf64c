// Package cache holds the run-scoped memo sets used by a history scan.
//
// [FileSet] records SHA-256 fingerprints of file content the detector has
// already cleared, so byte-identical content reached through another path,
// commit or ref is not inspected twice. [CommitSet] records commit ids that
// were fully scanned. Both only grow, have no size bound and live in memory
// for a single run; nothing is written to disk.
package cache
