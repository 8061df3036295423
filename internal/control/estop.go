package control

// EmergencyStop decides, ahead of all other per-tick logic, whether output
// must be forced quiescent. Two inputs feed it: the level-sensitive physical
// stop input sampled each tick, and a latched software stop request from an
// external command.
//
// The latch is consumed on the tick it engages; the resulting deactivation
// clears consent, so output stays quiescent until a fresh full consent hold
// completes. Evaluation cannot fail.
type EmergencyStop struct {
	latch bool
}

// Request latches a software stop. Called under the engine's mutex.
func (e *EmergencyStop) Request() {
	e.latch = true
}

// Evaluate reports whether the override condition holds this tick, given the
// sampled stop input level. A pending latch engages once and is consumed.
func (e *EmergencyStop) Evaluate(level bool) bool {
	engaged := level || e.latch
	e.latch = false
	return engaged
}
