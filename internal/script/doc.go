// Package script defines timed control-value sequences and their playback.
//
// A script is an ordered list of steps, each holding a complete set of
// control values for a fixed duration. The control loop advances playback by
// asking the player for the values at the current tick instant; the player is
// stateless across calls so playback is fully determined by the start time.
//
// Scripts are validated on upload but their strobe frequencies are stored as
// requested. The safety clamp in the control engine applies to scripted
// values on every emit, the same as preset values.
package script
