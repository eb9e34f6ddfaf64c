// Package output formats scan reports for display or machine consumption.
//
// Three formats are supported:
//   - text  - human-readable terminal output (default)
//   - json  - full structured JSON report
//   - sarif - SARIF v2.1.0 for upload to code scanning services
//
// Use [BuildReport] to turn a scan result into a [Report], [GetWriter] to
// obtain a [Writer] for a format string, and [WriteReport] to handle
// destination selection.
package output
