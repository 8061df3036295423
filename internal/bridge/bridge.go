package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lanternworks/kinesis-core/internal/control"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/mqtt"
	"github.com/lanternworks/kinesis-core/internal/script"
)

// Publisher is the subset of the MQTT client the bridge needs. Narrowed for
// testability.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Controller is the subset of the control engine the bridge drives.
type Controller interface {
	ApplyPreset(name string) error
	RequestStop()
	LoadScript(s script.Script) error
	Status() control.StatusSnapshot
}

// presetCommand is the payload on kinesis/command/preset.
type presetCommand struct {
	Name string `json:"name"`
}

// Bridge connects the control engine to the MQTT namespace: inbound commands
// (preset, stop, script), the retained status snapshot, and the per-tick
// output frames consumed by the driver bridge.
//
// Malformed payloads are rejected here and never reach the core: the engine
// only ever sees a resolved name, a validated script, or a stop request.
type Bridge struct {
	client Publisher
	engine Controller
	log    *logging.Logger
	topics mqtt.Topics
}

// New creates a bridge over the given MQTT client and engine.
func New(client Publisher, engine Controller, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Default()
	}
	return &Bridge{
		client: client,
		engine: engine,
		log:    log,
	}
}

// Start subscribes to the inbound command topics. Call after the MQTT client
// is connected; the client restores subscriptions across reconnects.
func (b *Bridge) Start() error {
	if err := b.client.Subscribe(b.topics.AllCommands(), 1, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	b.log.Info("command bridge started", "topic", b.topics.AllCommands())
	return nil
}

// handleCommand dispatches one inbound command by its topic's final segment.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	kind := topic[strings.LastIndex(topic, "/")+1:]

	switch kind {
	case "preset":
		return b.handlePreset(payload)
	case "stop":
		// A stop must never fail on payload contents; the payload is
		// ignored entirely.
		b.engine.RequestStop()
		return nil
	case "script":
		return b.handleScript(payload)
	default:
		b.log.Warn("unknown command dropped", "topic", topic)
		return nil
	}
}

func (b *Bridge) handlePreset(payload []byte) error {
	var cmd presetCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.log.Warn("malformed preset command dropped", "error", err)
		return nil
	}
	if cmd.Name == "" {
		b.log.Warn("preset command missing name, dropped")
		return nil
	}

	if err := b.engine.ApplyPreset(cmd.Name); err != nil {
		b.log.Warn("preset command rejected", "preset", cmd.Name, "error", err)
		return nil
	}
	return nil
}

func (b *Bridge) handleScript(payload []byte) error {
	var s script.Script
	if err := json.Unmarshal(payload, &s); err != nil {
		b.log.Warn("malformed script command dropped", "error", err)
		return nil
	}

	if err := b.engine.LoadScript(s); err != nil {
		b.log.Warn("script command rejected", "script", s.Name, "error", err)
		return nil
	}
	return nil
}
