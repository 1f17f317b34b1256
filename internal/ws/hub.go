package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub keeps client sets per room code. It is an ephemeral, process-scoped
// index for fan-out only; the store stays the source of truth.
type Hub struct {
	rooms sync.Map // roomCode -> *room
}

func NewHub() *Hub { return &Hub{} }

func (h *Hub) Join(roomCode string, c *clientConn) {
	r, _ := h.rooms.LoadOrStore(roomCode, newRoom())
	r.(*room).add(c)
}

func (h *Hub) Leave(roomCode string, c *clientConn) {
	if v, ok := h.rooms.Load(roomCode); ok {
		v.(*room).remove(c)
	}
}

func (h *Hub) SetHost(roomCode string, c *clientConn) {
	r, _ := h.rooms.LoadOrStore(roomCode, newRoom())
	r.(*room).setHost(c)
}

// BroadcastExcept fans a frame out to the room, skipping the sender. No
// ordering is guaranteed across rooms; within one sender's connection the
// write mutex keeps FIFO.
func (h *Hub) BroadcastExcept(roomCode string, sender *clientConn, msg []byte) {
	if v, ok := h.rooms.Load(roomCode); ok {
		v.(*room).broadcastExcept(sender, msg)
	}
}

// SendHost delivers a frame to the room's host connection only.
func (h *Hub) SendHost(roomCode string, msg []byte) bool {
	v, ok := h.rooms.Load(roomCode)
	if !ok {
		return false
	}
	host := v.(*room).hostConn()
	if host == nil {
		return false
	}
	return host.write(websocket.TextMessage, msg) == nil
}

// BroadcastEvent wraps body into the envelope contract and fans it out to the
// whole room. Used by the lease-expiry watcher.
func (h *Hub) BroadcastEvent(roomCode, event string, body any) {
	raw, err := json.Marshal(map[string]any{"event": event, "body": body})
	if err != nil {
		return
	}
	h.BroadcastExcept(roomCode, nil, raw)
}
