package mqtt

import "fmt"

// Topic prefixes for the Kinesis MQTT namespace.
//
// Commands flow inward (UI or show controller -> core), status and output
// frames flow outward (core -> driver bridge, dashboards).
const (
	// TopicPrefix is the base for all Kinesis topics.
	TopicPrefix = "kinesis"

	// TopicPrefixSystem is the base for system lifecycle topics.
	TopicPrefixSystem = "kinesis/system"
)

// Topics provides builders for Kinesis MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// Command returns the topic for a specific inbound command kind.
//
// Example: kinesis/command/preset
func (Topics) Command(kind string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, kind)
}

// AllCommands returns a pattern matching all inbound commands.
//
// Pattern: kinesis/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefix)
}

// Status returns the retained status snapshot topic.
//
// Example: kinesis/status
func (Topics) Status() string {
	return fmt.Sprintf("%s/status", TopicPrefix)
}

// OutputFrame returns the topic for per-tick output frames consumed by the
// driver bridge.
//
// Example: kinesis/output/frame
func (Topics) OutputFrame() string {
	return fmt.Sprintf("%s/output/frame", TopicPrefix)
}

// SystemStatus returns the system status topic (online/offline, LWT).
//
// Example: kinesis/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
