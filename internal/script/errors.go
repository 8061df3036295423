package script

import "errors"

var (
	// ErrEmptyScript indicates a script with no steps.
	ErrEmptyScript = errors.New("script: no steps")

	// ErrTooManySteps indicates a script exceeding the step limit.
	ErrTooManySteps = errors.New("script: too many steps")

	// ErrInvalidStep indicates a step with an out-of-range duration.
	ErrInvalidStep = errors.New("script: invalid step")
)
