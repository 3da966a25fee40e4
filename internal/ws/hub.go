package ws

import (
	"encoding/json"
	"sync"

	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// stationEvent is an internal struct for routing events to station rooms
type stationEvent struct {
	Station string
	Event   Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Clients join one room per preparation station; the "All" room receives
// every broadcast.
type Hub struct {
	// Registered clients by station
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *stationEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *stationEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.station] == nil {
				h.rooms[client.station] = make(map[*Client]bool)
			}
			h.rooms[client.station][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.station]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.station)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for _, station := range h.targets(event.Station) {
				for client := range h.rooms[station] {
					select {
					case client.send <- message:
					default:
						// Client's send buffer is full, close and unregister
						close(client.send)
						delete(h.rooms[station], client)
						if len(h.rooms[station]) == 0 {
							delete(h.rooms, station)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// targets resolves the rooms a broadcast reaches. Station-scoped events also
// reach the "All" room; events addressed to "All" reach every room.
// Caller must hold h.mu.
func (h *Hub) targets(station string) []string {
	if station == "" || station == enum.StationAll {
		stations := make([]string, 0, len(h.rooms))
		for s := range h.rooms {
			stations = append(stations, s)
		}
		return stations
	}
	return []string{station, enum.StationAll}
}

// BroadcastToStation sends an event to all clients watching a station.
// This is the public API for handlers to broadcast events.
func (h *Hub) BroadcastToStation(station string, event Event) {
	h.broadcast <- &stationEvent{
		Station: station,
		Event:   event,
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- &stationEvent{Station: enum.StationAll, Event: event}
}
