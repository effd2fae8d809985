package profiles

import "errors"

var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidPatch = errors.New("invalid profile patch")
)
