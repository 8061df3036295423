package control

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	c := NewStrobeController(4.0)

	tests := []struct {
		name      string
		requested float64
		want      float64
	}{
		{"within ceiling", 3.0, 3.0},
		{"at ceiling", 4.0, 4.0},
		{"above ceiling", 9.0, 4.0},
		{"absurdly high", 1e9, 4.0},
		{"negative", -5, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Clamp(tt.requested); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

func TestClampNaN(t *testing.T) {
	c := NewStrobeController(4.0)

	nan := 0.0
	nan = nan / nan
	if got := c.Clamp(nan); got != 0 {
		t.Errorf("Clamp(NaN) = %v, want 0", got)
	}
}

func TestCeilingReclampedAgainstHardware(t *testing.T) {
	tests := []struct {
		name       string
		configured float64
		want       float64
	}{
		{"normal", 4.0, 4.0},
		{"at hardware ceiling", 10.0, 10.0},
		{"above hardware ceiling", 50.0, HardwareStrobeCeilingHz},
		{"negative", -1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStrobeController(tt.configured)
			if got := c.MaxHz(); got != tt.want {
				t.Errorf("MaxHz() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTickPulseTiming(t *testing.T) {
	c := NewStrobeController(10.0)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if applied := c.SetFrequency(1.0); applied != 1.0 {
		t.Fatalf("SetFrequency(1.0) = %v, want 1.0", applied)
	}

	// First tick fires immediately; pulse stays high for the pulse width.
	if !c.Tick(start) {
		t.Error("pulse not high at first tick")
	}
	if !c.Tick(start.Add(10 * time.Millisecond)) {
		t.Error("pulse not high within pulse width")
	}
	if c.Tick(start.Add(30 * time.Millisecond)) {
		t.Error("pulse still high after pulse width")
	}
	if c.Tick(start.Add(500 * time.Millisecond)) {
		t.Error("pulse high mid-period")
	}

	// Next period boundary fires again.
	if !c.Tick(start.Add(1001 * time.Millisecond)) {
		t.Error("pulse not high at next period")
	}
}

func TestTickZeroFrequencyNeverPulses(t *testing.T) {
	c := NewStrobeController(4.0)
	c.SetFrequency(0)

	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		if c.Tick(now.Add(time.Duration(i) * 20 * time.Millisecond)) {
			t.Fatalf("pulse high at tick %d with zero frequency", i)
		}
	}
}

func TestTickPulseWidthShorterThanCeilingPeriod(t *testing.T) {
	// At the hardware ceiling the period is 100 ms; the pulse must clear
	// well before the next firing.
	c := NewStrobeController(HardwareStrobeCeilingHz)
	c.SetFrequency(HardwareStrobeCeilingHz)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	if !c.Tick(start) {
		t.Fatal("pulse not high at firing")
	}
	if c.Tick(start.Add(50 * time.Millisecond)) {
		t.Error("pulse still high halfway through the ceiling period")
	}
}

func TestPulseRateTracksAppliedFrequency(t *testing.T) {
	// The 250 ms period at 4 Hz does not align with a 20 ms tick. The
	// schedule must advance by whole periods, not re-anchor to the
	// observing tick, or the effective rate sags below the applied one.
	c := NewStrobeController(4.0)
	c.SetFrequency(4.0)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	const tick = 20 * time.Millisecond

	fired := 0
	for i := 0; i < 3000; i++ { // 60 s of ticks
		if c.Tick(start.Add(time.Duration(i) * tick)) {
			fired++
		}
	}
	if fired != 240 {
		t.Errorf("pulses over 60s at 4 Hz = %d, want 240", fired)
	}
}

func TestTickRecoversFromLoopStall(t *testing.T) {
	c := NewStrobeController(4.0)
	c.SetFrequency(4.0)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	c.Tick(start)

	// After a stall of several periods the schedule re-anchors instead of
	// firing a burst to catch up.
	if !c.Tick(start.Add(2 * time.Second)) {
		t.Fatal("pulse not high after stall")
	}
	if c.Tick(start.Add(2*time.Second + 40*time.Millisecond)) {
		t.Error("burst firing while catching up after stall")
	}
	if !c.Tick(start.Add(2*time.Second + 250*time.Millisecond)) {
		t.Error("pulse not high one period after re-anchor")
	}
}

func TestMarkForcesFiring(t *testing.T) {
	c := NewStrobeController(4.0)
	c.SetFrequency(1.0)

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	c.Tick(start)
	if c.Tick(start.Add(100 * time.Millisecond)) {
		t.Fatal("pulse high mid-period before mark")
	}

	// The hardware timer boundary resyncs the phase immediately.
	c.Mark()
	if !c.Tick(start.Add(120 * time.Millisecond)) {
		t.Error("pulse not high after hardware timer mark")
	}

	// The mark is consumed once.
	if c.Tick(start.Add(160 * time.Millisecond)) {
		t.Error("mark consumed twice")
	}
}

func TestSetFrequencyChangeResetsPhase(t *testing.T) {
	c := NewStrobeController(10.0)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	c.SetFrequency(1.0)
	c.Tick(start)

	// Raising the frequency must not wait out the old 1 s period.
	c.SetFrequency(5.0)
	if !c.Tick(start.Add(100 * time.Millisecond)) {
		t.Error("pulse not refired after frequency change")
	}
}
