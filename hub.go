package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"novastrike/engine/logging"
)

const writeWait = 10 * time.Second

// Hub streams the engine's diagnostic events to websocket subscribers. It is
// a logging.Sink: the router fans events into it like any other sink, and the
// hub fans them out to whoever is watching.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
	upgrader    websocket.Upgrader
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// eventMessage is the wire envelope subscribers receive.
type eventMessage struct {
	Type  string        `json:"type"`
	Event logging.Event `json:"event"`
}

// Write satisfies logging.Sink by broadcasting the event to every subscriber.
// A subscriber that cannot keep up is dropped rather than stalling the rest.
func (h *Hub) Write(event logging.Event) error {
	payload, err := json.Marshal(eventMessage{Type: "event", Event: event})
	if err != nil {
		return err
	}

	h.mu.Lock()
	subs := make(map[uint64]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.send(payload); err != nil {
			h.drop(id)
		}
	}
	return nil
}

// Close satisfies logging.Sink.
func (h *Hub) Close(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		sub.conn.Close()
		delete(h.subscribers, id)
	}
	return nil
}

func (s *subscriber) send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) drop(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// handleWS upgrades an HTTP request into a diagnostics subscription. The read
// loop exists only to notice disconnects; subscribers never send commands.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	id := h.nextID.Add(1)
	h.mu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	h.mu.Unlock()

	go func() {
		defer h.drop(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// SubscriberCount reports how many connections are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
