package control

import "time"

// gateState enumerates the consent gate's states.
type gateState int

const (
	gateIdle gateState = iota
	gateHolding
	gateActivated
)

// ConsentGate converts a sustained physical input into activation. The input
// must be held continuously for the full hold duration: releasing early
// returns the gate to idle and nothing accumulates across partial holds.
//
// Once activated, further holds of the same input have no effect until a
// deactivation resets the gate. All methods are called from the control loop
// goroutine only.
type ConsentGate struct {
	hold  time.Duration
	state gateState
	since time.Time
}

// NewConsentGate creates a gate requiring a continuous hold of the given
// duration.
func NewConsentGate(hold time.Duration) *ConsentGate {
	return &ConsentGate{hold: hold}
}

// Update samples the consent input level at now and advances the state
// machine. It returns true exactly once, on the tick the hold duration
// completes; acting on activation is the caller's job.
func (g *ConsentGate) Update(now time.Time, input bool) bool {
	switch g.state {
	case gateIdle:
		if input {
			g.state = gateHolding
			g.since = now
		}
	case gateHolding:
		if !input {
			g.state = gateIdle
			return false
		}
		if now.Sub(g.since) >= g.hold {
			g.state = gateActivated
			return true
		}
	case gateActivated:
		// Held consent after activation has no further effect.
	}
	return false
}

// HoldProgress returns how far a hold in flight has progressed, in [0,1].
// It is 0 when idle and 1 once activated, for proportional feedback on the
// consent input.
func (g *ConsentGate) HoldProgress(now time.Time) float64 {
	switch g.state {
	case gateHolding:
		p := float64(now.Sub(g.since)) / float64(g.hold)
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	case gateActivated:
		return 1
	default:
		return 0
	}
}

// Activated reports whether the gate has granted consent.
func (g *ConsentGate) Activated() bool { return g.state == gateActivated }

// Reset returns the gate to idle. Every deactivation calls this: a fresh
// full hold is required to reactivate.
func (g *ConsentGate) Reset() {
	g.state = gateIdle
	g.since = time.Time{}
}
