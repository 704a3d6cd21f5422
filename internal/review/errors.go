package review

import (
	"errors"
	"fmt"

	"github.com/dshills/revio/internal/gitctx"
	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/scan"
)

// IOError is a read or write failure on one file.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// errTooLarge is wrapped in an IOError when a file exceeds MaxFileBytes.
var errTooLarge = errors.New("file exceeds size limit")

// IsFatal reports whether err aborts a run before any file is processed.
func IsFatal(err error) bool {
	return errors.Is(err, providers.ErrUnconfigured) ||
		errors.Is(err, providers.ErrUnreachable) ||
		errors.Is(err, scan.ErrPathNotFound) ||
		errors.Is(err, gitctx.ErrDirty) ||
		errors.Is(err, gitctx.ErrNotRepository)
}
