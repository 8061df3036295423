package preset

import "errors"

var (
	// ErrUnknownPreset indicates a requested preset name did not resolve.
	ErrUnknownPreset = errors.New("preset: unknown preset")

	// ErrInvalidName indicates a preset name failed validation.
	ErrInvalidName = errors.New("preset: invalid name")

	// ErrBuiltinPreset indicates an attempt to overwrite or delete a
	// compiled-in preset.
	ErrBuiltinPreset = errors.New("preset: builtin preset is read-only")

	// ErrNotFound indicates a repository lookup matched no stored preset.
	ErrNotFound = errors.New("preset: not found")
)
