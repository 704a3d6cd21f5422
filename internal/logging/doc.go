// Package logging builds the zap logger used across revio.
//
// [New] tees a console core (colorized console or JSON encoding) with an
// optional JSON file core rotated by lumberjack. Every core is wrapped so
// that messages and string fields pass through package redact before they
// are encoded; [WithSecrets] adds exact values, such as the active
// credential, to the scrub list.
package logging
