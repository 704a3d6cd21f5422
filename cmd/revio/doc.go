// Revio fixes JavaScript, TypeScript, HTML and CSS files in place using a
// text-generation backend.
//
// It walks a project directory, asks the selected backend (a local Ollama
// daemon, Gemini, Anthropic or OpenAI) for a corrected version of each
// eligible file, overwrites files that changed, and prints a progress stream
// followed by a run report with deterministic exit codes.
//
// Usage:
//
//	revio review                       # fix files under the current directory
//	revio review ./web --dry-run       # show what would change
//	revio review --provider gemini     # use the Gemini API (GEMINI_API_KEY)
//	revio review --format json --out report.json
//	revio models doctor                # check the backend is reachable
//	revio config init                  # write a default config file
//
// There is no rollback: run it on a clean git worktree, or pass
// --require-clean to enforce that.
package main
