// Package cache stores backend fix answers on disk so an unchanged file is
// not sent to the backend twice.
//
// An entry is one JSON file named after its [Key]: the backend, model and
// file path plus a SHA-256 digest of the file content. The answer is either
// sanitized code or the NO_CHANGES sentinel. Entries older than the TTL miss
// on read and are deleted; [Cache.Prune] removes them in bulk.
//
// The default cache directory is $XDG_CACHE_HOME/revio (or the OS-appropriate
// equivalent).
package cache
