// Package config loads and merges revio configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REVIO_PROVIDER, REVIO_MODEL, REVIO_LOG_LEVEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/revio/config.yaml, or --config)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [LoadFile] and [Save] to edit the
// file itself, and [SetField] to update a single key. Credentials are never
// part of the configuration; they come from the environment.
package config
