// Package output formats the final run report for display or machine
// consumption.
//
// Three formats are supported:
//   - text: human-readable terminal output (default)
//   - json: the full structured report
//   - markdown: a summary table plus one section per fixed or failed file
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Report]. [WriteReport]
// handles destination selection.
package output
