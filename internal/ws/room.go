package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// room is the per-code fan-out set plus the one connection currently acting
// as host. Connection identity is the only authorization on this transport.
type room struct {
	mu    sync.RWMutex
	host  *clientConn
	conns map[*clientConn]struct{}
}

func newRoom() *room { return &room{conns: map[*clientConn]struct{}{}} }

func (r *room) add(c *clientConn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

func (r *room) remove(c *clientConn) {
	r.mu.Lock()
	delete(r.conns, c)
	if r.host == c {
		r.host = nil
	}
	r.mu.Unlock()
	c.rawConn.Close()
}

// setHost replaces the host connection (kiosk restart keeps the same code).
func (r *room) setHost(c *clientConn) {
	r.mu.Lock()
	r.host = c
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

func (r *room) hostConn() *clientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

// broadcastExcept delivers to every connection in the room but the sender.
func (r *room) broadcastExcept(sender *clientConn, msg []byte) {
	// Take a quick snapshot of the current connections
	r.mu.RLock()
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		if c != sender {
			conns = append(conns, c)
		}
	}
	r.mu.RUnlock()

	// Do the I/O outside the lock
	var failed []*clientConn
	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		r.remove(c)
	}
}
