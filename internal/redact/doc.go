// Package redact scrubs credentials from text before it is logged, printed
// or written to a report.
//
// [Secrets] applies regex heuristics for common key shapes: provider API
// keys (Anthropic, OpenAI, Google), bearer tokens, API key headers, JWTs,
// AWS access key IDs and secret assignments. [Values] additionally removes
// exact known values such as the credential passed to the active backend,
// which catches keys the heuristics miss.
package redact
