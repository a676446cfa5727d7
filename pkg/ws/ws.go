// Package ws pushes order-status updates to connected clients over
// WebSocket using gorilla/websocket.
//
// Each connection is registered under the authenticated user ID; when an
// administrator transitions an order, the order service publishes an
// event and the hub forwards it only to that order's owner:
//
//	var OrderFeed = ws.NewHub()
//	func init() { go OrderFeed.Run() }
//
//	ws.Upgrade(w, r, OrderFeed, identity.UserID)
//	OrderFeed.SendToUser(order.User.Hex(), payload)
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rishivikram/vastra/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is one connected WebSocket consumer, keyed by user ID.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// readPump discards inbound frames (the feed is one-way) while keeping the
// connection alive via pong handling.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

type userMessage struct {
	userID string
	data   []byte
}

// Hub maintains all active connections grouped by user.
type Hub struct {
	clients    map[string]map[*Client]bool // userID → connections
	outbound   chan userMessage
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		outbound:   make(chan userMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.userID)
				}
			}

		case msg := <-h.outbound:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.data:
				default:
					close(client.send)
					delete(h.clients[msg.userID], client)
				}
			}
		}
	}
}

// SendToUser queues data for every connection belonging to userID.
// Safe to call from any goroutine; drops the message when the hub is
// saturated rather than blocking the caller.
func (h *Hub) SendToUser(userID string, data []byte) {
	select {
	case h.outbound <- userMessage{userID: userID, data: data}:
	default:
	}
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades the HTTP connection and registers the client under userID.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{hub: hub, conn: conn, userID: userID, send: make(chan []byte, 64)}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}
