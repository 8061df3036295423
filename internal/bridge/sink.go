package bridge

import (
	"encoding/json"
	"time"

	"github.com/lanternworks/kinesis-core/internal/control"
)

// Apply publishes one tick's output frame for the driver bridge. QoS 0,
// unretained: a frame is superseded by the next tick, so a dropped one is
// worthless by the time it could be redelivered.
//
// Bridge therefore satisfies control.OutputSink.
func (b *Bridge) Apply(out control.Output) {
	payload, err := json.Marshal(out)
	if err != nil {
		return
	}
	// Publish failures while the broker is away are expected; the control
	// loop must not care.
	_ = b.client.Publish(b.topics.OutputFrame(), payload, 0, false)
}

// Telemetry is the time-series sink for output frames. Satisfied by the
// InfluxDB client.
type Telemetry interface {
	WriteOutputFrame(siteID, preset string, diskSpeed [3]float64, strobeHz, fade, ledBrightness float64)
}

// TelemetrySink records applied output values to the time-series store,
// downsampled from the tick rate to roughly one sample per interval. It is
// safe to chain behind the bridge with control.MultiSink.
type TelemetrySink struct {
	telemetry Telemetry
	status    func() control.StatusSnapshot
	siteID    string
	interval  time.Duration
	last      time.Time
}

// NewTelemetrySink creates a downsampling sink. status supplies the preset
// name and fade multiplier that accompany each sample.
func NewTelemetrySink(telemetry Telemetry, status func() control.StatusSnapshot, siteID string, interval time.Duration) *TelemetrySink {
	return &TelemetrySink{
		telemetry: telemetry,
		status:    status,
		siteID:    siteID,
		interval:  interval,
	}
}

// Apply samples the output if the interval has elapsed since the last write.
// Called from the control loop goroutine only.
func (s *TelemetrySink) Apply(out control.Output) {
	now := time.Now()
	if now.Sub(s.last) < s.interval {
		return
	}
	s.last = now

	snap := s.status()
	s.telemetry.WriteOutputFrame(s.siteID, snap.PresetName, out.DiskSpeed, out.StrobeHz, snap.FadeMultiplier, out.LEDBrightness)
}
