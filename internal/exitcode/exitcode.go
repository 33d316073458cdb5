// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous,
	// a move the task hierarchy does not allow).
	UserError = 1

	// AuthError indicates missing or rejected credentials.
	AuthError = 2

	// BackendError indicates the remote store could not be reached or
	// failed the request.
	BackendError = 3

	// Cancelled indicates the command was interrupted.
	Cancelled = 130
)
