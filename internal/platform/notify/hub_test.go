package notify

import (
	"context"
	"encoding/json"
	"testing"
)

func newTestClient(tables ...string) *Client {
	return &Client{
		ID:     "test-client",
		Tables: tables,
		Send:   make(chan []byte, 16),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient("beds", "admissions")

	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TableCount("beds") != 1 {
		t.Errorf("expected 1 subscriber on beds, got %d", hub.TableCount("beds"))
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
	if hub.TableCount("beds") != 0 {
		t.Errorf("expected 0 subscribers on beds after unregister, got %d", hub.TableCount("beds"))
	}

	// Double unregister must be a no-op, not a panic on a closed channel.
	hub.Unregister(client)
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.Register(client)

	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Tables: []string{"opd_queues"}})
	if hub.TableCount("opd_queues") != 1 {
		t.Fatal("expected subscription to opd_queues")
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Tables: []string{"opd_queues"}})
	if hub.TableCount("opd_queues") != 0 {
		t.Error("expected unsubscription from opd_queues")
	}
	if len(client.Tables) != 0 {
		t.Errorf("expected client table list emptied, got %v", client.Tables)
	}
}

func TestHub_ChangedReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()
	subscribed := newTestClient("prescriptions")
	other := newTestClient("beds")
	hub.Register(subscribed)
	hub.Register(other)

	hub.Changed(context.Background(), "prescriptions")

	select {
	case data := <-subscribed.Send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Type != "changed" || ev.Table != "prescriptions" {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected subscribed client to receive event")
	}

	select {
	case <-other.Send:
		t.Error("client subscribed to a different table received event")
	default:
	}
}

func TestHub_BroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub()
	client := &Client{ID: "slow", Tables: []string{"patients"}, Send: make(chan []byte)}
	hub.Register(client)

	// Unbuffered channel with no reader: Broadcast must not block.
	hub.Changed(context.Background(), "patients")
}
