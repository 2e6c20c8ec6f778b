package domain

import "errors"

var (
	// ErrMalformedStatus is returned for status events that cannot be applied
	ErrMalformedStatus = errors.New("malformed status event")

	// ErrTerminalRecord is returned when an event tries to move a finished download out of Done
	ErrTerminalRecord = errors.New("download already finished")

	// ErrNotFound is returned when no record exists for a url
	ErrNotFound = errors.New("download not found")
)
