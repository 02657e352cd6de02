package services

import "errors"

// Error kinds surfaced to the HTTP layer. Wrap them with fmt.Errorf("...: %w")
// to add context; handlers match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("bad request")
	ErrDeadlinePassed = errors.New("RSVP deadline has passed, please submit a change request instead")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTOTPRequired   = errors.New("2FA code required")
)
