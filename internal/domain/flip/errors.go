package flip

import "errors"

var (
	// ErrInvalidInput indicates an invalid flip request.
	ErrInvalidInput = errors.New("invalid flip request")
	// ErrTransformerUnavailable indicates no video transformer is configured.
	ErrTransformerUnavailable = errors.New("video transformer unavailable")
)
