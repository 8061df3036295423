package control

// Output is the complete set of hardware-facing values produced by one tick.
// Every field is an applied value: the strobe frequency is already clamped
// and the brightness-like channels already carry the session fade. The sink's
// job (bus signaling, PWM mapping, LED strip timing) is out of scope here.
type Output struct {
	// DiskSpeed holds the commanded rotational rates. The middle disk's
	// direction is inverted relative to its stored speed to realise
	// counter-rotation.
	DiskSpeed [3]float64 `json:"disk_speed"`

	// StrobeHz is the applied, safety-clamped pulse rate.
	StrobeHz float64 `json:"strobe_hz"`

	// StrobePulse is true while the strobe output should be high.
	StrobePulse bool `json:"strobe_pulse"`

	// StrobeIntensity is the faded strobe output level in [0,1].
	StrobeIntensity float64 `json:"strobe_intensity"`

	// Spotlight holds the faded RGB channel values in [0,1].
	Spotlight [3]float64 `json:"spotlight"`

	// LEDBrightness is the faded strip brightness in [0,1].
	LEDBrightness float64 `json:"led_brightness"`
}

// OutputSink receives the applied output values once per tick. Implementations
// must not block: the control loop calls Apply synchronously.
type OutputSink interface {
	Apply(Output)
}

// SinkFunc adapts a function to the OutputSink interface.
type SinkFunc func(Output)

// Apply calls f(out).
func (f SinkFunc) Apply(out Output) { f(out) }

// NopSink discards all output. Used when no transport is configured.
func NopSink() OutputSink {
	return SinkFunc(func(Output) {})
}

// MultiSink fans one tick's output to several sinks in order.
func MultiSink(sinks ...OutputSink) OutputSink {
	return SinkFunc(func(out Output) {
		for _, s := range sinks {
			s.Apply(out)
		}
	})
}
