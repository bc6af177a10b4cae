package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

type WsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Event is a change to one project's data.
type Event struct {
	ProjectID string
	Type      string
	Payload   any
}

const (
	EventFileCreated    = "file_created"
	EventFileUpdated    = "file_updated"
	EventFileRenamed    = "file_renamed"
	EventFileMoved      = "file_moved"
	EventFileDeleted    = "file_deleted"
	EventProjectUpdated = "project_updated"
	EventProjectDeleted = "project_deleted"
)

// Hub fans project events out to the websocket clients subscribed to that
// project. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[string]map[*Client]bool // projectID -> clients
	broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{} // closed when Run returns
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Publish queues ev for delivery. It never blocks; events are dropped when
// the queue is full.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("[Hub] event queue full, dropping event", "type", ev.Type, "project", ev.ProjectID)
	}
}

// Subscribe registers client. It reports false when the hub has stopped.
func (h *Hub) Subscribe(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes client. It returns immediately once the hub has stopped,
// since Run already closed every client on exit.
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Run serves registrations and events until ctx is cancelled, then closes
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.clients {
				for client := range room {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return

		case client := <-h.Register:
			if _, ok := h.clients[client.ProjectID]; !ok {
				h.clients[client.ProjectID] = make(map[*Client]bool)
			}
			h.clients[client.ProjectID][client] = true
			h.logger.Info("[Hub] client subscribed", "user", client.UserID, "project", client.ProjectID)

		case client := <-h.Unregister:
			h.remove(client)

		case ev := <-h.broadcast:
			room, ok := h.clients[ev.ProjectID]
			if !ok {
				continue
			}
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				h.logger.Error("[Hub] failed to marshal event payload", "type", ev.Type, "error", err)
				continue
			}
			msg, _ := json.Marshal(WsMessage{Type: ev.Type, Payload: payload})
			for client := range room {
				select {
				case client.Send <- msg:
				default:
					h.logger.Warn("[Hub] client send buffer full, disconnecting", "user", client.UserID)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	room, ok := h.clients[client.ProjectID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.clients, client.ProjectID)
	}
	h.logger.Info("[Hub] client left", "user", client.UserID, "project", client.ProjectID)
}
