package domain

import "errors"

var (
	// ErrInvalidInput reports parameters the heuristics cannot be evaluated on,
	// such as a non-positive farm area or an empty forecast.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable reports that the medium backing the record store
	// could not be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
