// Package mqtt provides the MQTT client for Kinesis Core.
//
// MQTT is the transport between the core and its external collaborators:
// the show controller publishes commands (preset selection, script upload,
// stop) to kinesis/command/+, and the core publishes retained status
// snapshots to kinesis/status and per-tick output frames to
// kinesis/output/frame for the driver bridge.
//
// The client wraps eclipse/paho.mqtt.golang with automatic reconnection,
// subscription restoration, a Last Will and Testament on the system status
// topic, and panic recovery around message handlers.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.Topics{}
//	client.Subscribe(topics.AllCommands(), 1, handleCommand)
//	client.PublishRetained(topics.Status(), snapshotJSON)
package mqtt
