package ws

import (
	"encoding/json"
	"sync"

	"ajnabi/internal/session"
)

// Client is one connected rendering surface (a device) for an account.
type Client struct {
	AccountID uint
	Send      chan []byte
	hub       *ViewHub
	mu        sync.Mutex
	closed    bool
}

// trySend queues a frame without blocking. Frames to a closed or slow
// client are dropped; it resyncs on its next frame.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// ViewHub fans the session projection out to every connected client of an
// account. One account can have several connections (phone + tablet); all
// of them render the same view.
type ViewHub struct {
	mu        sync.RWMutex
	byAccount map[uint]map[*Client]struct{}
}

func NewViewHub() *ViewHub {
	return &ViewHub{byAccount: make(map[uint]map[*Client]struct{})}
}

func (h *ViewHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byAccount[c.AccountID] == nil {
		h.byAccount[c.AccountID] = make(map[*Client]struct{})
	}
	h.byAccount[c.AccountID][c] = struct{}{}
}

func (h *ViewHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byAccount[c.AccountID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byAccount, c.AccountID)
		}
	}
}

// PublishView implements session.ViewSink. Slow clients are skipped rather
// than blocking the event path; they resync on their next frame.
func (h *ViewHub) PublishView(accountID uint, v session.View) {
	data, err := json.Marshal(map[string]interface{}{"type": "view", "view": v})
	if err != nil {
		return
	}
	h.mu.RLock()
	m := h.byAccount[accountID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

func (h *ViewHub) ClientCount(accountID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byAccount[accountID])
}
