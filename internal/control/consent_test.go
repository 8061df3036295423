package control

import (
	"testing"
	"time"
)

func TestConsentContinuousHoldActivates(t *testing.T) {
	gate := NewConsentGate(3000 * time.Millisecond)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if gate.Update(start, true) {
		t.Fatal("activated on the first sample")
	}
	if gate.Update(start.Add(1500*time.Millisecond), true) {
		t.Fatal("activated before hold duration")
	}
	if !gate.Update(start.Add(3000*time.Millisecond), true) {
		t.Fatal("did not activate at hold duration")
	}
	if !gate.Activated() {
		t.Error("gate not in activated state")
	}

	// Further holds have no additional effect.
	if gate.Update(start.Add(10*time.Second), true) {
		t.Error("activated a second time without reset")
	}
}

func TestConsentEarlyReleaseDoesNotAccumulate(t *testing.T) {
	gate := NewConsentGate(3000 * time.Millisecond)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	// Hold for 2999 ms, release.
	gate.Update(start, true)
	if gate.Update(start.Add(2999*time.Millisecond), false) {
		t.Fatal("activated on release")
	}

	// A fresh press must start from zero: 2 s into the new hold the
	// combined time exceeds 3 s but the gate must not activate.
	press2 := start.Add(4 * time.Second)
	gate.Update(press2, true)
	if gate.Update(press2.Add(2*time.Second), true) {
		t.Fatal("partial holds accumulated")
	}
	if !gate.Update(press2.Add(3*time.Second), true) {
		t.Error("continuous second hold did not activate")
	}
}

func TestConsentHoldProgress(t *testing.T) {
	gate := NewConsentGate(3000 * time.Millisecond)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if got := gate.HoldProgress(start); got != 0 {
		t.Errorf("idle progress = %v, want 0", got)
	}

	gate.Update(start, true)
	if got := gate.HoldProgress(start.Add(1500 * time.Millisecond)); got != 0.5 {
		t.Errorf("mid-hold progress = %v, want 0.5", got)
	}
	if got := gate.HoldProgress(start.Add(10 * time.Second)); got != 1 {
		t.Errorf("overlong hold progress = %v, want 1 (capped)", got)
	}

	gate.Update(start.Add(3*time.Second), true)
	if got := gate.HoldProgress(start.Add(4 * time.Second)); got != 1 {
		t.Errorf("activated progress = %v, want 1", got)
	}
}

func TestConsentResetRequiresFreshHold(t *testing.T) {
	gate := NewConsentGate(3000 * time.Millisecond)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	gate.Update(start, true)
	gate.Update(start.Add(3*time.Second), true)
	if !gate.Activated() {
		t.Fatal("gate not activated")
	}

	gate.Reset()
	if gate.Activated() {
		t.Fatal("gate still activated after reset")
	}

	// The input is still held, but a reset gate must demand a full new
	// hold starting from the next sample.
	t2 := start.Add(4 * time.Second)
	if gate.Update(t2, true) {
		t.Fatal("activated immediately after reset")
	}
	if gate.Update(t2.Add(2999*time.Millisecond), true) {
		t.Fatal("activated before a full fresh hold")
	}
	if !gate.Update(t2.Add(3*time.Second), true) {
		t.Error("fresh full hold did not activate")
	}
}
