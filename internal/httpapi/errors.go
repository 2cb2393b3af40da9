package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/supervisor"
)

// statusFor maps a domain sentinel error to its HTTP status code and a
// short, single-sentence message safe to return to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, supervisor.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, supervisor.ErrConflict):
		return http.StatusConflict, "a child is already running"
	case errors.Is(err, supervisor.ErrNotFound), errors.Is(err, logstore.ErrNotFound):
		return http.StatusNotFound, "no child has been started"
	case errors.Is(err, supervisor.ErrInternal):
		return http.StatusInternalServerError, "internal error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func wrapBadRequest(msg string) error {
	return fmt.Errorf("%w: %s", supervisor.ErrBadRequest, msg)
}

func wrapInternal(err error) error {
	return fmt.Errorf("%w: %v", supervisor.ErrInternal, err)
}

// wrapLogReadErr re-tags a logstore read failure for statusFor: a missing
// file maps to NOT_FOUND, anything else to INTERNAL.
func wrapLogReadErr(err error) error {
	if errors.Is(err, logstore.ErrNotFound) {
		return err
	}
	return wrapInternal(err)
}
