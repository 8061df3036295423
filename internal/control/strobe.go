package control

import (
	"sync/atomic"
	"time"
)

// HardwareStrobeCeilingHz is the absolute maximum strobe pulse rate the
// installation may ever emit. It is compiled in: configuration can lower the
// operating ceiling but no interface can raise it above this value.
const HardwareStrobeCeilingHz = 10.0

// strobePulseWidth is how long the pulse output stays high once fired. It is
// fixed, independent of the period, and shorter than the period at the
// hardware ceiling (100 ms at 10 Hz).
const strobePulseWidth = 20 * time.Millisecond

// StrobeController owns the strobe frequency ceiling and pulse timing. It is
// the single point that must hold even if everything upstream is defective:
// its decisions depend only on its own fields, never on the rest of the
// machine state. No frequency value from preset application, script playback,
// or external protocol bypasses Clamp.
//
// All methods except Mark are called from the control loop goroutine only.
// Mark is the one asynchronous input: the hardware timer source sets an
// atomic flag that the loop consumes exactly once per tick.
type StrobeController struct {
	maxHz float64

	clampedHz  float64
	nextFire   time.Time
	pulseUntil time.Time

	// mark is the single-writer/single-reader pulse-boundary flag. The
	// timer source is the sole writer, Tick the sole reader.
	mark atomic.Bool
}

// NewStrobeController creates a controller with the configured operating
// ceiling. The ceiling is re-clamped against the hardware maximum here so a
// defective configuration value can never raise it.
func NewStrobeController(configuredMaxHz float64) *StrobeController {
	if configuredMaxHz > HardwareStrobeCeilingHz {
		configuredMaxHz = HardwareStrobeCeilingHz
	}
	if configuredMaxHz < 0 {
		configuredMaxHz = 0
	}
	return &StrobeController{maxHz: configuredMaxHz}
}

// MaxHz returns the operating ceiling.
func (c *StrobeController) MaxHz() float64 { return c.maxHz }

// Clamp converts a requested frequency into an applied one:
// min(max(requestedHz, 0), MaxHz). It never trusts the requested value and
// has no side effects.
func (c *StrobeController) Clamp(requestedHz float64) float64 {
	if requestedHz < 0 || requestedHz != requestedHz { // NaN guard
		return 0
	}
	if requestedHz > c.maxHz {
		return c.maxHz
	}
	return requestedHz
}

// SetFrequency clamps and stores the frequency driving pulse timing, and
// returns the applied value. A change resets the firing phase so the next
// pulse uses the new period.
func (c *StrobeController) SetFrequency(requestedHz float64) float64 {
	applied := c.Clamp(requestedHz)
	if applied != c.clampedHz {
		c.clampedHz = applied
		c.nextFire = time.Time{}
	}
	return applied
}

// Mark records a pulse boundary from the hardware timer source. Safe to call
// from any goroutine; consumed once by the next Tick.
func (c *StrobeController) Mark() {
	c.mark.Store(true)
}

// Tick decides whether the pulse output is high at now. A pulse fires when
// the period since the last firing has elapsed, or immediately when the
// hardware timer flag is set; it then stays high for the fixed pulse width.
func (c *StrobeController) Tick(now time.Time) bool {
	marked := c.mark.Swap(false)

	if c.clampedHz <= 0 {
		c.pulseUntil = time.Time{}
		return false
	}

	period := time.Duration(float64(time.Second) / c.clampedHz)
	if marked || c.nextFire.IsZero() || !now.Before(c.nextFire) {
		c.pulseUntil = now.Add(strobePulseWidth)
		// Advance the schedule by whole periods so tick quantisation does
		// not slow the effective rate; re-anchor to now on a fresh phase,
		// a timer mark, or after a loop stall longer than one period.
		next := c.nextFire.Add(period)
		if marked || c.nextFire.IsZero() || !now.Before(next) {
			next = now.Add(period)
		}
		c.nextFire = next
	}
	return now.Before(c.pulseUntil)
}

// Reset clears pulse timing state. Called on deactivation so a later session
// starts with a fresh phase.
func (c *StrobeController) Reset() {
	c.clampedHz = 0
	c.nextFire = time.Time{}
	c.pulseUntil = time.Time{}
	c.mark.Store(false)
}
