package devtools

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/membrane-dev/membrane/pkg/observable"
)

// defaultBacklog is how many recent mutation events a hub retains for
// replay to newly connected clients.
const defaultBacklog = 256

// EventHub implements observable.Observer and fans mutation events out to
// connected websocket clients. Events are also kept in a bounded ring
// buffer (drop-oldest) so a client attaching mid-session sees recent
// history.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	ring    []observable.MutationEvent
	start   int
	count   int

	upgrader websocket.Upgrader
}

// NewEventHub creates an event hub with the default backlog.
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]bool),
		ring:    make([]observable.MutationEvent, defaultBacklog),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Inspector is a dev tool; allow all origins
			},
		},
	}
}

// ObserveMutation implements observable.Observer.
func (h *EventHub) ObserveMutation(ev observable.MutationEvent) {
	h.mu.Lock()
	idx := (h.start + h.count) % len(h.ring)
	h.ring[idx] = ev
	if h.count < len(h.ring) {
		h.count++
	} else {
		h.start = (h.start + 1) % len(h.ring)
	}
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.Close()
		}
	}
}

// Recent returns the buffered events, oldest first.
func (h *EventHub) Recent() []observable.MutationEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]observable.MutationEvent, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

// HandleWebSocket upgrades the connection, replays the backlog, and keeps
// the client registered until it disconnects.
func (h *EventHub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	for _, ev := range h.Recent() {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			return
		}
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Clients returns the number of connected inspector clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
