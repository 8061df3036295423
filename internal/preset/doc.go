// Package preset manages the installation's named control-value bundles.
//
// A preset pairs a name with a complete set of actuator values: disk speeds,
// strobe frequency and intensity, and spotlight colour. The library holds the
// compiled-in builtins and merges custom presets loaded from SQLite at
// startup; builtins always win on a name clash so the activation default can
// never be shadowed.
//
// Presets store requested strobe frequencies unclamped. Safety clamping is
// the control engine's responsibility and happens on every emit, so a stored
// preset can never bypass the hardware ceiling.
package preset
