// Package cli wires together the Cobra command tree for the akscan binary.
//
// It defines the root command and its subcommands (scan, config, hook,
// version), binds flags into the layered configuration, drives the history
// scan, and maps the outcome to exit codes: 0 when every commit is clean,
// 1 on a detection or any failure.
package cli
