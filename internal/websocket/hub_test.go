package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := testHub()
	c := NewClient(hub, nil, 1)

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Errorf("count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("count = %d, want 0", hub.ClientCount())
	}

	// Unregistering twice must not panic or double-close.
	hub.Unregister(c)
}

func TestHubBroadcast(t *testing.T) {
	hub := testHub()
	c1 := NewClient(hub, nil, 3)
	c2 := NewClient(hub, nil, 3)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("order", "upserted", 3, map[string]any{"platform_id": float64(42)})
	hub.Broadcast(msg)

	for i, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("client %d unmarshal: %v", i+1, err)
			}
			if got.Type != "order_upserted" || got.ShopID != 3 {
				t.Errorf("client %d message = %+v", i+1, got)
			}
		default:
			t.Errorf("client %d received nothing", i+1)
		}
	}
}

func TestHubBroadcastScopedToShop(t *testing.T) {
	hub := testHub()
	watching := NewClient(hub, nil, 3)
	other := NewClient(hub, nil, 8)
	hub.Register(watching)
	hub.Register(other)

	hub.Broadcast(NewMessage("order", "upserted", 3, nil))

	if len(watching.send) != 1 {
		t.Errorf("watching client queued = %d, want 1", len(watching.send))
	}
	if len(other.send) != 0 {
		t.Errorf("another shop's dashboard received the event")
	}

	// Zero shop ID addresses everyone.
	hub.Broadcast(NewMessage("system", "notice", 0, nil))
	if len(other.send) != 1 {
		t.Errorf("zero shop id did not reach all clients")
	}
}

func TestHubBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := testHub()
	c := NewClient(hub, nil, 1)
	hub.Register(c)

	msg := NewMessage("order", "upserted", 1, nil)
	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast(msg)
	}

	// The buffer holds exactly sendBufferSize messages; the rest were
	// dropped rather than blocking the broadcaster.
	if len(c.send) != sendBufferSize {
		t.Errorf("buffered = %d, want %d", len(c.send), sendBufferSize)
	}
}
