package control

import "time"

// MachineState is the sole mutable record of commanded values. All fields
// hold requested values: clamping and fading happen at emit time, so stored
// fields may be non-zero while the installation is inactive without any
// output reaching the hardware.
//
// The engine owns the state and guards it with its own mutex; MachineState
// itself carries no synchronisation.
type MachineState struct {
	DiskSpeed       [3]float64
	StrobeHz        float64
	StrobeIntensity float64
	Spotlight       [3]float64
	LEDBrightness   float64

	// Active gates all output. While false every emitted value is zero.
	Active bool

	// Consented is set only by a completed consent hold and cleared by
	// every deactivation.
	Consented bool

	// SessionStart is set iff Active; zero otherwise.
	SessionStart time.Time

	// PresetName is the last applied preset, or a sentinel ("idle" when
	// nothing has been applied, "custom" while a script drives the values).
	PresetName string
}

// StatusSnapshot is a read-only view of the machine state for external
// reporting. Producing one never mutates state.
type StatusSnapshot struct {
	Active      bool       `json:"active"`
	Consented   bool       `json:"consented"`
	PresetName  string     `json:"preset_name"`
	DiskSpeed   [3]float64 `json:"disk_speed"`
	StrobeHz    float64    `json:"strobe_hz"`
	StrobeMaxHz float64    `json:"strobe_max_hz"`

	// SessionElapsedS is seconds since activation, 0 while inactive.
	SessionElapsedS float64 `json:"session_elapsed_s"`

	// SessionRemainingS is seconds until the hard cutoff, 0 while inactive.
	SessionRemainingS float64 `json:"session_remaining_s"`

	// FadeMultiplier is the current brightness fade in [0,1], 1 outside
	// the fade window.
	FadeMultiplier float64 `json:"fade_multiplier"`

	// HoldProgress is consent hold progress in [0,1], 0 unless a hold is
	// in flight. Exposed for proportional feedback on the consent input.
	HoldProgress float64 `json:"hold_progress"`

	// ScriptName is the running script's name, empty when no script is
	// loaded.
	ScriptName string `json:"script_name,omitempty"`
}
