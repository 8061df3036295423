package sessionlog

import "errors"

var (
	// ErrNotFound indicates no stored session matched the given ID.
	ErrNotFound = errors.New("sessionlog: session not found")
)
