// Package control is the device control state engine: the machine state, the
// consent and emergency-stop gating, the session timer and fade-out, the
// safety-capped strobe controller, and the per-tick apply engine that turns
// stored control values into clamped, faded output for an external sink.
//
// Everything runs on a single control-loop goroutine at a fixed tick period.
// External inputs reach the engine through mutex-guarded setters sampled once
// per tick; the one asynchronous input is the strobe hardware-timer mark,
// a single-writer/single-reader atomic flag.
//
// Per-tick evaluation order is fixed and safety-critical: emergency stop is
// checked ahead of everything, then inactivity, then the hard session cutoff,
// then fade and strobe clamp, then a single emit to the output sink. The
// strobe frequency ceiling is enforced on every emit by the strobe controller
// alone, independent of the rest of the state, so no defective preset,
// script, or transport request can exceed it.
package control
