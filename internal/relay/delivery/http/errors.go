package http

import (
	"errors"
	"net/http"

	"telegram-task-relay/internal/relay"
)

// mapError translates relay errors into HTTP status codes. Processing failures are
// outcomes, not errors, so anything unexpected is still acknowledged.
func (h *handler) mapError(err error) int {
	switch {
	case errors.Is(err, relay.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, relay.ErrMissingRequestID), errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}
