// Package providers implements the Backend contract for each supported
// text-generation service.
//
// Every backend exposes the same three operations: Initialize validates the
// credential or contacts the service once per run, FixCode returns sanitized
// source or the NoChanges sentinel, and DiffSummary returns a short change
// description that never fails (errors become a fixed fallback string).
//
// Supported backends: Ollama (local daemon, no credential), Gemini via the
// genai SDK, Anthropic and OpenAI over their HTTP APIs. HTTP backends share a
// retry helper with exponential back-off for rate limits and 5xx responses.
// Base URLs and HTTP clients are struct fields so tests can point them at
// httptest servers.
//
// Use [New] with a [Kind] to obtain a Backend. [WithRateLimit] and
// [WithCache] wrap any Backend without changing its contract.
package providers
