package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vtask/internal/docstore"
	"vtask/internal/exitcode"
	"vtask/internal/hierarchy"
	"vtask/internal/service"
	"vtask/internal/transcript"
)

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrInvalidTaskRef indicates a reference that is neither N, aN nor "a N".
	ErrInvalidTaskRef = errors.New("invalid task reference")

	// ErrRefOutOfRange indicates a task number past the end of its list.
	ErrRefOutOfRange = errors.New("task number out of range")

	// ErrListLetterNotFound indicates a list letter with no list behind it.
	ErrListLetterNotFound = errors.New("list letter not found")
)

// userErrors are reported with exitcode.UserError.
var userErrors = []error{
	ErrTaskRefRequired,
	ErrInvalidTaskRef,
	ErrRefOutOfRange,
	ErrListLetterNotFound,
	service.ErrNotFound,
	service.ErrAmbiguous,
	service.ErrInvalid,
	service.ErrInvalidParent,
	service.ErrNoTaskLists,
	hierarchy.ErrTaskNotFound,
	hierarchy.ErrNoTaskAbove,
	hierarchy.ErrNotTopLevel,
	hierarchy.ErrHasSubtasks,
	hierarchy.ErrCrossGroup,
	transcript.ErrEngineUnavailable,
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var engineErr *transcript.EngineError
	return errors.As(err, &engineErr)
}

// reportError prints err to errOut and returns the matching exit code.
// Interrupts win over everything else, and rejected credentials win over
// the generic remote failure they are wrapped in.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: interrupted")
		return exitcode.Cancelled
	case errors.Is(err, docstore.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case isUserError(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// printOK prints the success marker unless quiet.
func printOK(quiet bool, out io.Writer) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
