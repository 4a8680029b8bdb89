// Package ws implements the live update channel. Every connected client
// receives every appointment event; there are no acknowledgements, no
// per-client routing and no replay for late joiners. A client that cannot
// keep up is dropped rather than allowed to stall the broadcast loop.
package ws

import (
	"encoding/json"
	"log"
)

// Event is the envelope broadcast to clients: a name such as
// "appointment:created" and the full appointment payload.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks the live set of connected clients and fans events out to
// them. It is the only in-process shared mutable state besides the DB
// pool; all access goes through the run loop's channels.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub returns a Hub ready for Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. It must be started once, in its own goroutine,
// before any client connects.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it instead of blocking everyone.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast marshals the event and hands it to the run loop. It never
// blocks the caller: when the broadcast buffer is full the event is
// dropped and logged, keeping the notification failure domain away from
// the request that triggered it.
func (h *Hub) Broadcast(event string, data any) {
	body, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		log.Printf("ws: marshal %s event failed: %v", event, err)
		return
	}
	select {
	case h.broadcast <- body:
	default:
		log.Printf("ws: broadcast buffer full, dropping %s event", event)
	}
}
