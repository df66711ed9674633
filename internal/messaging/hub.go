package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 25 * time.Second
	readTimeout = 60 * time.Second
)

// Client is one open WebSocket of a user.
type Client struct {
	Login string
	conn  *websocket.Conn
	mu    sync.Mutex
}

func (c *Client) write(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}

// Hub tracks open sockets by login and relays broker messages to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(login string, conn *websocket.Conn) *Client {
	c := &Client{Login: login, conn: conn}
	h.mu.Lock()
	if h.clients[login] == nil {
		h.clients[login] = make(map[*Client]struct{})
	}
	h.clients[login][c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.Login]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.Login)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// UnregisterLogin closes every socket of login and reports how many there were.
func (h *Hub) UnregisterLogin(login string) int {
	h.mu.Lock()
	set := h.clients[login]
	delete(h.clients, login)
	h.mu.Unlock()
	for c := range set {
		_ = c.conn.Close()
	}
	return len(set)
}

func (h *Hub) Count(login string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[login])
}

func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		if err := c.write(websocket.TextMessage, []byte(message)); err != nil {
			log.Printf("[messaging] dropping client %s: %v", c.Login, err)
			h.Unregister(c)
		}
	}
}

// Run relays messages from broker until ctx is done.
func (h *Hub) Run(ctx context.Context, broker Broker) error {
	msgs, err := broker.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			h.Broadcast(msg)
		}
	}
}

// Serve pings the client and blocks reading until the socket closes.
func (h *Hub) Serve(c *Client) {
	done := make(chan struct{})
	defer func() {
		close(done)
		h.Unregister(c)
	}()

	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
