// Package config loads and validates Kinesis Core configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// KINESIS_* environment variable overrides. Validation rejects any
// configuration that would loosen a safety limit — in particular,
// safety.strobe_max_hz can never exceed the hardware strobe ceiling,
// which the control package enforces again independently.
package config
