package cmd

import (
	"errors"

	"github.com/uname-n/git-issue/internal/issuestorage"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidInput = 2
	ExitNotFound     = 3
	ExitConflict     = 4 // precondition failed or invalid state
	ExitCorrupt      = 5
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, issuestorage.ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, issuestorage.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, issuestorage.ErrPreconditionFailed), errors.Is(err, issuestorage.ErrInvalidState):
		return ExitConflict
	case errors.Is(err, issuestorage.ErrCorrupt):
		return ExitCorrupt
	}
	return ExitError
}
