package control

import "time"

// SessionTimer bounds total active duration and computes the fade-out
// multiplier. It is a pure function of elapsed time: the engine owns the
// session start and passes elapsed in, so the timer itself carries no state.
type SessionTimer struct {
	max  time.Duration
	fade time.Duration
}

// NewSessionTimer creates a timer with the given maximum session duration
// and fade-out window. The configuration layer guarantees fade < max.
func NewSessionTimer(max, fade time.Duration) SessionTimer {
	return SessionTimer{max: max, fade: fade}
}

// Max returns the hard session duration limit.
func (t SessionTimer) Max() time.Duration { return t.max }

// Expired reports whether elapsed has crossed the hard cutoff. Crossing it
// is terminal for the session instance: the caller deactivates on the same
// tick.
func (t SessionTimer) Expired(elapsed time.Duration) bool {
	return elapsed > t.max
}

// Fade returns the brightness multiplier for elapsed: 1 before the fade
// window, linearly decreasing to 0 at the cutoff, 0 beyond it. The
// multiplier applies only to brightness-like channels; it never alters the
// applied strobe frequency.
func (t SessionTimer) Fade(elapsed time.Duration) float64 {
	fadeStart := t.max - t.fade
	switch {
	case elapsed <= fadeStart:
		return 1
	case elapsed >= t.max:
		return 0
	default:
		return 1 - float64(elapsed-fadeStart)/float64(t.fade)
	}
}
