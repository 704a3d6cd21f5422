// Package cli wires together the Cobra command tree for the revio binary.
//
// It defines the root command and its subcommands (review, config, models,
// cache, version), binds flags, layers configuration, builds the backend with
// its decorators, runs the review orchestrator with a progress reporter, and
// returns deterministic exit codes.
package cli
