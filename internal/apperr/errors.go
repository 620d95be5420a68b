package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid input")
	ErrKeyMissing = errors.New("api key missing or unverified")
)
