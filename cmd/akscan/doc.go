// Akscan scans the full history of a git repository for access keys.
//
// It checks out every commit reachable from every branch and tag, inspects
// each file's content once, and stops at the first token that looks like an
// access-key ID or secret. The exit status is 0 when the history is clean
// and 1 on a detection or any failure, so it can gate CI jobs and pushes.
//
// Usage:
//
//	akscan                          # scan the repository in the current directory
//	akscan scan --dir path/to/repo  # same, for another directory
//	akscan --format sarif --out akscan.sarif
//	akscan config init              # write a default config file
//	akscan hook install             # block pushes that would publish a key
//
// Scanning moves HEAD. Pass --restore-head to check the original branch
// back out when the scan ends.
package main
