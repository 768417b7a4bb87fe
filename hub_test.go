package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"novastrike/engine/logging"
)

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count stuck at %d, want %d", hub.SubscriberCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcastsEventsToSubscribers(t *testing.T) {
	hub := newHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.handleWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForSubscribers(t, hub, 1)

	sent := logging.Event{
		Type:     "lifecycle.nova_launched",
		Tick:     42,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	}
	if err := hub.Write(sent); err != nil {
		t.Fatalf("Write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg eventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "event" {
		t.Fatalf("unexpected envelope type %q", msg.Type)
	}
	if msg.Event.Type != sent.Type || msg.Event.Tick != sent.Tick {
		t.Fatalf("event mangled in transit: %+v", msg.Event)
	}
}

func TestHubDropsDisconnectedSubscribers(t *testing.T) {
	hub := newHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.handleWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)

	// Broadcasting into an empty hub is a no-op, not an error.
	if err := hub.Write(logging.Event{Type: "lifecycle.nova_expired"}); err != nil {
		t.Fatalf("Write after disconnect: %v", err)
	}
}
