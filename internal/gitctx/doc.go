// Package gitctx reads repository metadata for the directory being fixed
// and guards runs against uncommitted work.
//
// Fixes are written in place with no rollback, so [Clean] lets a caller
// refuse to start unless every change in the worktree is committed and can
// be restored with git. All access goes through go-git; no git binary is
// required.
package gitctx
