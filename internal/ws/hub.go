// Package ws pushes order lifecycle events to connected kitchen boards over
// websockets, so the board never polls.
package ws

import (
	"encoding/json"
	"log"
)

// Event is what the board receives whenever an order changes.
type Event struct {
	Type    string `json:"type"`
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// Hub keeps the set of connected board clients and fans events out to all
// of them. All membership changes go through the run loop; no lock is
// shared with the read/write pumps.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run owns the client set. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("board client connected (%d online)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("board client disconnected (%d online)", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// OrderChanged broadcasts a status change to every connected board.
func (h *Hub) OrderChanged(orderID int64, status string) {
	payload, err := json.Marshal(Event{Type: "order.status_changed", OrderID: orderID, Status: status})
	if err != nil {
		log.Printf("ERROR: marshal board event: %v", err)
		return
	}
	h.broadcast <- payload
}
