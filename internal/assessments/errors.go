package assessments

import "errors"

var (
	// ErrInvalidEntry is returned when an append lacks a user or country.
	ErrInvalidEntry = errors.New("invalid assessment entry")
)
