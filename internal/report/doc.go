// Package report turns the progress of a review run into human-readable
// lines and fans them out to one or more sinks.
//
// A [Reporter] implements review.Observer. It does not influence the run;
// it only formats what it is told. Lines are scrubbed with package redact
// before any sink sees them. [TerminalSink] styles lines with lipgloss,
// while [WriterSink] and [LogSink] strip ANSI escape sequences so that log
// files and structured logs stay plain.
package report
