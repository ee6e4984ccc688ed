package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Event types pushed to clients.
const (
	EventFeedUpdated         = "feed.updated"
	EventNotificationUpdated = "notification.updated"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into an Event.
func NewEvent(typ string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{Type: typ, Payload: b}, nil
}

// hotelEvent routes an event to the clients of one hotel
type hotelEvent struct {
	Hotel string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by hotel name
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *hotelEvent

	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *hotelEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing every
// client. Call it as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for hotel, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, hotel)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.hotel] == nil {
				h.rooms[client.hotel] = make(map[*Client]bool)
			}
			h.rooms[client.hotel][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Hotel] {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds client to its hotel room. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.hotel]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.hotel)
	}
}

// BroadcastToHotel sends an event to every client watching hotel. It never
// blocks; when the queue is full the event is dropped and false returned.
func (h *Hub) BroadcastToHotel(hotel string, event Event) bool {
	select {
	case h.broadcast <- &hotelEvent{Hotel: hotel, Event: event}:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of clients watching hotel.
func (h *Hub) ClientCount(hotel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[hotel])
}
