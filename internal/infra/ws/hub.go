// Package ws implements the realtime gateway over websocket connections.
package ws

import (
	"context"
	"sync"
	"time"

	"farmlink/internal/domain/service"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	clientSendBuffer  = 64
	writeTimeout      = 10 * time.Second
	keepAliveInterval = 25 * time.Second
	pingTimeout       = 5 * time.Second
)

// Client is one live websocket connection of a user. A user may hold several
// clients at once (multiple tabs or devices).
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan service.Event

	ctx    context.Context
	cancel context.CancelFunc
}

// Hub is the in-process registry of live connections keyed by user ID.
// It is the only cross-request mutable state in the process.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

// NewHub is the constructor for Hub.
func NewHub() *Hub {
	return &Hub{
		clients: map[uuid.UUID]map[*Client]struct{}{},
	}
}

// AddClient registers a connection for the user and starts its write and
// keep-alive loops.
func (h *Hub) AddClient(userID uuid.UUID, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan service.Event, clientSendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	go c.keepAliveLoop()

	return c
}

// RemoveClient deregisters the connection and closes it. The client leaves
// the registry before its loops are cancelled so a concurrent Publish never
// targets a dead client.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	c.cancel()

	_ = c.Conn.Close(websocket.StatusNormalClosure, "bye")
}

// Publish sends the event to every open connection of the user.
// A client whose send buffer is full drops the event rather than blocking.
func (h *Hub) Publish(_ context.Context, userID uuid.UUID, event service.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.Send <- event:
		default:
			// Slow consumer; dropping keeps publishers non-blocking.
		}
	}
}

// ConnectionCount returns the number of open connections for the user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID])
}

// writeLoop drains the send channel onto the wire. The channel is never
// closed; publishers may still hold a reference to a departed client, and an
// unclosed channel keeps their sends safe until it is collected.
func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = wsjson.Write(writeCtx, c.Conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			_ = c.Conn.Ping(pingCtx)
			cancel()
		}
	}
}
