// Package bridge connects the control engine to the MQTT namespace.
//
// Inbound, it subscribes to kinesis/command/+ and dispatches preset, stop,
// and script commands to the engine; malformed payloads are logged and
// dropped here so the core never sees an uninterpretable request. Outbound,
// it publishes the retained status snapshot to kinesis/status and per-tick
// output frames to kinesis/output/frame for the driver bridge, and offers a
// downsampling telemetry sink for the time-series store.
package bridge
