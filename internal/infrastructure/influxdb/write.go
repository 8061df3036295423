package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOutputFrame writes a sample of the applied output values.
//
// The control loop downsamples before calling this (roughly 1 Hz); writes
// are batched and sent asynchronously, so a slow or absent InfluxDB never
// stalls a tick.
//
// Parameters:
//   - siteID: Installation identifier (tag)
//   - preset: Currently applied preset name (tag)
//   - diskSpeed: Applied disk speeds, signed
//   - strobeHz: Applied (clamped) strobe frequency
//   - fade: Current fade multiplier
//   - ledBrightness: Applied LED strip brightness
func (c *Client) WriteOutputFrame(siteID, preset string, diskSpeed [3]float64, strobeHz, fade, ledBrightness float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"output_frame",
		map[string]string{
			"site_id": siteID,
			"preset":  preset,
		},
		map[string]interface{}{
			"disk_speed_0":   diskSpeed[0],
			"disk_speed_1":   diskSpeed[1],
			"disk_speed_2":   diskSpeed[2],
			"strobe_hz":      strobeHz,
			"fade":           fade,
			"led_brightness": ledBrightness,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionEvent records a session lifecycle transition.
//
// Parameters:
//   - siteID: Installation identifier (tag)
//   - event: One of "activated", "stopped", "cutoff"
//   - durationS: Session duration in seconds (0 for activation)
func (c *Client) WriteSessionEvent(siteID, event string, durationS float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"session_event",
		map[string]string{
			"site_id": siteID,
			"event":   event,
		},
		map[string]interface{}{
			"duration_s": durationS,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
