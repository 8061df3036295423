package api

import (
	"testing"

	"github.com/lanternworks/kinesis-core/internal/infrastructure/config"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	return NewHub(config.WebSocketConfig{Path: "/ws"}, log)
}

func TestHubBroadcastDelivers(t *testing.T) {
	hub := testHub(t)
	client := &wsClient{hub: hub, send: make(chan []byte, wsSendBufferSize)}
	hub.register(client)

	hub.Broadcast("status", map[string]any{"active": false})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Fatal("empty broadcast message")
		}
	default:
		t.Fatal("broadcast did not reach registered client")
	}
}

// A client can disconnect between the broadcast snapshotting the client list
// and the send: its channel is already closed when the broadcaster reaches
// it. That must be absorbed, not panic the broadcasting goroutine.
func TestHubBroadcastSurvivesClosedClient(t *testing.T) {
	hub := testHub(t)
	closed := &wsClient{hub: hub, send: make(chan []byte, wsSendBufferSize)}
	live := &wsClient{hub: hub, send: make(chan []byte, wsSendBufferSize)}
	hub.register(closed)
	hub.register(live)

	// Model the disconnect landing after the snapshot: the channel is
	// closed while the client is still in the broadcast list.
	close(closed.send)

	hub.Broadcast("status", map[string]any{"active": true})

	select {
	case <-live.send:
	default:
		t.Error("live client missed broadcast after closed peer")
	}
}

func TestHubBroadcastSkipsFullBuffer(t *testing.T) {
	hub := testHub(t)
	client := &wsClient{hub: hub, send: make(chan []byte, 1)}
	hub.register(client)
	client.send <- []byte("backlog")

	// Must not block: a slow client is skipped.
	hub.Broadcast("status", map[string]any{"active": false})

	if got := <-client.send; string(got) != "backlog" {
		t.Errorf("buffered message = %q, want backlog", got)
	}
}

func TestHubUnregisterClosesOnce(t *testing.T) {
	hub := testHub(t)
	client := &wsClient{hub: hub, send: make(chan []byte, 1)}
	hub.register(client)

	hub.unregister(client)
	// A second unregister (readPump and closeAll racing) must not
	// double-close the channel.
	hub.unregister(client)

	if _, ok := <-client.send; ok {
		t.Error("send channel not closed after unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
}
