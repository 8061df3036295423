// Package influxdb provides time-series telemetry for Kinesis Core.
//
// Applied output values (downsampled from the control loop) and session
// lifecycle events are written to InfluxDB v2 with non-blocking batched
// writes. Telemetry is strictly best-effort: the control loop never waits
// on it, and the core runs fine with InfluxDB disabled.
package influxdb
