// Package notify delivers table-change events to dashboard clients over
// WebSockets. Events are invalidation hints only: clients re-fetch the
// affected collection and must tolerate duplicate or out-of-order delivery.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Event signals that rows in a table changed. Insert/update/delete are not
// differentiated; subscribers re-fetch either way.
type Event struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage represents an inbound message from a WebSocket client.
type ClientMessage struct {
	Action string   `json:"action"`
	Tables []string `json:"tables"`
}

// Publisher is implemented by anything that can announce a table change.
// Services call Changed after every successful mutation.
type Publisher interface {
	Changed(ctx context.Context, table string)
}

// NopPublisher discards all events. Used in tests and CLI commands.
type NopPublisher struct{}

func (NopPublisher) Changed(context.Context, string) {}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection.
type Client struct {
	ID     string
	Tables []string
	Send   chan []byte
	hub    *Hub
	conn   Conn
}

// Hub is the central connection manager that tracks clients and their table
// subscriptions. All operations are thread-safe via sync.RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // table -> set of clients
	all     map[*Client]struct{}            // all connected clients
}

// NewHub creates a Hub ready to manage WebSocket clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
	}
}

// Register adds a client to the hub and subscribes it to its initial tables.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}

	for _, table := range client.Tables {
		if h.clients[table] == nil {
			h.clients[table] = make(map[*Client]struct{})
		}
		h.clients[table][client] = struct{}{}
	}
}

// Unregister removes a client from the hub, all table subscriptions, and
// closes the client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, table := range client.Tables {
		if subscribers, ok := h.clients[table]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, table)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Subscribe dynamically adds tables to an already-registered client.
func (h *Hub) Subscribe(client *Client, tables []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, table := range tables {
		if h.clients[table] == nil {
			h.clients[table] = make(map[*Client]struct{})
		}
		h.clients[table][client] = struct{}{}
	}
	client.Tables = append(client.Tables, tables...)
}

// Unsubscribe dynamically removes tables from an already-registered client.
func (h *Hub) Unsubscribe(client *Client, tables []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removeSet := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		removeSet[t] = struct{}{}
	}

	for _, table := range tables {
		if subscribers, ok := h.clients[table]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, table)
			}
		}
	}

	remaining := make([]string, 0, len(client.Tables))
	for _, t := range client.Tables {
		if _, rm := removeSet[t]; !rm {
			remaining = append(remaining, t)
		}
	}
	client.Tables = remaining
}

// ProcessMessage handles an inbound ClientMessage, dispatching to Subscribe
// or Unsubscribe as appropriate.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Tables)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Tables)
	}
}

// Broadcast sends an event to all clients subscribed to the given table.
func (h *Hub) Broadcast(table string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.clients[table]
	if !ok {
		return
	}

	for client := range subscribers {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// Changed implements Publisher by broadcasting a change event for the table.
func (h *Hub) Changed(_ context.Context, table string) {
	h.Broadcast(table, Event{
		Type:      "changed",
		Table:     table,
		Timestamp: time.Now().UTC(),
	})
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TableCount returns the number of clients subscribed to a specific table.
func (h *Hub) TableCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[table])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-WebSocket upgrades and message routing.
type Handler struct {
	hub *Hub
}

// NewHandler creates a handler bound to the given Hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (wh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", wh.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client with the hub, and starts read/write pumps.
func (wh *Handler) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:     uuid.New().String(),
		Tables: []string{},
		Send:   make(chan []byte, 256),
		hub:    wh.hub,
		conn:   &gorillaConnAdapter{ws},
	}

	wh.hub.Register(client)

	go wh.writePump(client, ws)
	go wh.readPump(client, ws)

	return nil
}

// readPump reads messages from the WebSocket connection and processes them.
func (wh *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		wh.hub.Unregister(client)
		ws.Close()
	}()

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		wh.hub.ProcessMessage(client, msg)
	}
}

// writePump writes messages from the Send channel to the WebSocket connection.
func (wh *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range client.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
