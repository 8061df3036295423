package control

import "errors"

var (
	// ErrNilLibrary indicates the engine was constructed without a preset
	// library. The activation default must always resolve, so the engine
	// refuses to start without one.
	ErrNilLibrary = errors.New("control: preset library is required")
)
