package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// Hub fans change events out to websocket subscribers. Each client
// subscribes to one or more collection channels; every successful
// create/update/delete on a collection produces one event on its channel.
// Events carry only the document id; subscribers re-fetch the list.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan ports.ChangeEvent
	Register   chan *Client
	Unregister chan *Client

	mu     sync.Mutex
	logger *logger.Logger
}

// NewHub creates a hub. Run must be started in its own goroutine.
func NewHub(appLogger *logger.Logger) *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan ports.ChangeEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     appLogger,
	}
}

// Publish implements ports.EventPublisher. It never blocks the caller: if
// the hub's queue is full the event is dropped and logged. A dropped
// event only delays a re-fetch until the next one.
func (h *Hub) Publish(event ports.ChangeEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case h.Broadcast <- event:
	default:
		h.logger.Warn("Realtime queue full, dropping event",
			"channel", event.Channel, "event", event.Event, "document_id", event.DocumentID)
	}
}

// Run owns the room maps. All membership changes and broadcasts go
// through its channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			for _, channel := range client.Channels {
				if h.Rooms[channel] == nil {
					h.Rooms[channel] = make(map[*Client]bool)
				}
				h.Rooms[channel][client] = true
			}
			h.mu.Unlock()
			h.logger.Debug("Realtime client subscribed", "channels", client.Channels)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case event := <-h.Broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Errorw("Error marshalling change event", "error", err)
				continue
			}

			// Copy the recipient list so no I/O happens under the lock.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[event.Channel]))
			for client := range h.Rooms[event.Channel] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// Lagging client: drop it rather than block the hub.
					h.logger.Warn("Realtime client send buffer full, unregistering")
					h.mu.Lock()
					h.removeClient(client)
					h.mu.Unlock()
				}
			}
		}
	}
}

// removeClient must be called with h.mu held.
func (h *Hub) removeClient(client *Client) {
	removed := false
	for _, channel := range client.Channels {
		if _, ok := h.Rooms[channel][client]; ok {
			delete(h.Rooms[channel], client)
			removed = true
			if len(h.Rooms[channel]) == 0 {
				delete(h.Rooms, channel)
			}
		}
	}
	if removed {
		close(client.Send)
	}
}
