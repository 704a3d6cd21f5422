// Package review drives the fix pipeline over a project tree.
//
// [Run] lists eligible files with package scan, initializes the selected
// backend once, then processes files strictly one at a time. Each file
// moves through an explicit state machine:
//
//	Pending -> Reading -> Requesting -> {Unchanged | Applying | Failed} -> Done
//
// A failure while reading, requesting or writing marks only that file as
// failed; the run continues with the next file. Errors that occur before
// the first file (missing root, unconfigured or unreachable backend, dirty
// worktree) abort the run and are reported by [IsFatal].
//
// The returned [Report] carries a [Summary] whose counters always satisfy
// Fixed + NoChanges + Errors == Total.
package review
