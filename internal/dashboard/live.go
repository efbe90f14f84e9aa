package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sendBuffer is how many events a slow client may fall behind before
// further events are dropped for it.
const sendBuffer = 32

const writeWait = 10 * time.Second

// clientRequest is the incoming WebSocket message format.
type clientRequest struct {
	Type string `json:"type"` // "ping"
}

// liveMessage is the outgoing WebSocket message format.
type liveMessage struct {
	Type    string           `json:"type"` // "event", "pong" or "error"
	Event   *lifecycle.Event `json:"event,omitempty"`
	Content string           `json:"content,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans lifecycle events out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnReportEvent implements lifecycle.Observer. Images are stripped from
// the broadcast copy.
func (h *Hub) OnReportEvent(ctx context.Context, ev lifecycle.Event) {
	ev.Report.Image = ""
	data, err := json.Marshal(liveMessage{Type: "event", Event: &ev})
	if err != nil {
		log.Printf("dashboard: encoding live event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("dashboard: live client is behind, dropping %s event", ev.Type)
		}
	}
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range c.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("dashboard: websocket write: %v", err)
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			break
		}

		var req clientRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.reply(c, liveMessage{Type: "error", Content: "invalid message format"})
			continue
		}

		switch req.Type {
		case "ping":
			h.reply(c, liveMessage{Type: "pong"})
		default:
			h.reply(c, liveMessage{Type: "error", Content: "unknown message type: " + req.Type})
		}
	}

	h.unregister(c)
	<-done
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) reply(c *client, m liveMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
