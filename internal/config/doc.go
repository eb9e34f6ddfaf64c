// Package config loads and merges akscan configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (AKSCAN_BACKEND, AKSCAN_FORMAT, AKSCAN_SKIP_BINARY, etc.)
//  3. Config file (--config, else .akscan.yaml in the scanned directory,
//     else $XDG_CONFIG_HOME/akscan/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file,
// and [SetField] to update a single key.
package config
