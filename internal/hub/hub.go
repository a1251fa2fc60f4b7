// Package hub is the UI transport: a websocket fan-out of assistant
// events to every connected client, and a funnel for commands (typed
// text or recorded audio clips) coming back.
package hub

import (
	"encoding/json"
	log "log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	upgrader   websocket.Upgrader

	// OnCommand receives typed commands from clients; OnAudio receives
	// raw recorded clips (binary frames). Both optional.
	OnCommand func(text string)
	OnAudio   func(clip []byte)
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run owns the client set. Start it once, on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Emit pushes one event to every client. It never blocks and never
// fails the caller: with no display attached the event just evaporates.
func (h *Hub) Emit(event string, payload map[string]any) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Warn("drop unmarshalable event", "event", event, "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Debug("hub backlog full, dropping event", "event", event)
	}
}

// ServeWS upgrades one HTTP request into a hub client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "err", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	if hello, err := json.Marshal(envelope{
		Event: "status",
		Data:  map[string]any{"data": "Connected to Quantum backend"},
	}); err == nil {
		c.send <- hello
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if mt == websocket.BinaryMessage {
			if c.hub.OnAudio != nil {
				c.hub.OnAudio(data)
			}
			continue
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug("ignoring malformed client message", "err", err)
			continue
		}
		if env.Event != "user_command" || c.hub.OnCommand == nil {
			continue
		}
		if cmd, _ := env.Data["command"].(string); cmd != "" {
			c.hub.OnCommand(cmd)
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
