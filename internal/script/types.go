package script

import (
	"fmt"
	"time"

	"github.com/lanternworks/kinesis-core/internal/preset"
)

// Limits on accepted scripts. A script drives the installation directly, so
// an unbounded upload must not be able to pin the control loop to arbitrary
// values for hours.
const (
	maxSteps        = 256
	minStepDuration = 20 * time.Millisecond
	maxStepDuration = 10 * time.Minute
)

// Step is one timed entry in a script: hold these control values for the
// given duration, then advance.
type Step struct {
	Values preset.ControlValues `json:"values"`

	// DurationMS is the step's hold time in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// Duration returns the step's hold time.
func (s Step) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// Script is an ordered sequence of timed control-value steps. Scripted
// strobe frequencies are stored as requested; the control engine clamps
// them on every emit like any other source.
type Script struct {
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`

	// Loop restarts the script from the first step when the last step
	// completes. A non-looping script holds its final step's values
	// until a preset is applied or the session ends.
	Loop bool `json:"loop,omitempty"`
}

// Validate checks the script against the accepted limits.
//
// Returns:
//   - ErrEmptyScript if there are no steps.
//   - ErrTooManySteps if the step count exceeds the limit.
//   - ErrInvalidStep if any step's duration is out of range.
func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrEmptyScript
	}
	if len(s.Steps) > maxSteps {
		return fmt.Errorf("%w: %d steps (max %d)", ErrTooManySteps, len(s.Steps), maxSteps)
	}
	for i, step := range s.Steps {
		d := step.Duration()
		if d < minStepDuration || d > maxStepDuration {
			return fmt.Errorf("%w: step %d duration %s (allowed %s to %s)",
				ErrInvalidStep, i, d, minStepDuration, maxStepDuration)
		}
	}
	return nil
}

// TotalDuration returns the summed duration of one pass through the script.
func (s Script) TotalDuration() time.Duration {
	var total time.Duration
	for _, step := range s.Steps {
		total += step.Duration()
	}
	return total
}
