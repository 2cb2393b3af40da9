package supervisor

import "errors"

// Sentinel errors returned by Supervisor operations. The HTTP surface maps
// these to status codes with errors.Is.
var (
	// ErrConflict: start called while a child is already Running.
	ErrConflict = errors.New("a child is already running")
	// ErrNotFound: status/kill/restart/logs called before any child has ever started.
	ErrNotFound = errors.New("no child has been started")
	// ErrBadRequest: the request is shaped wrong for the current slot state,
	// e.g. killing an already-terminated child, or an empty command.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal: spawn failure or other I/O failure not covered above.
	ErrInternal = errors.New("internal error")
)
