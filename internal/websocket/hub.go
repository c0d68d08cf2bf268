package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Entities and actions carried in Message.
const (
	EntityRelationship = "relationship"
	EntityQuestion     = "question"
	EntityMemory       = "memory"

	ActionCreated  = "created"
	ActionLinked   = "linked"
	ActionAnswered = "answered"
	ActionDeleted  = "deleted"
)

// Message is a change notification pushed to both members of a relationship.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub tracks connected clients grouped by relationship.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int64]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.relationshipID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.relationshipID] = room
	}
	room[c] = struct{}{}
}

// Unregister removes a client and closes its send channel. Repeated calls are no-ops.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.relationshipID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.relationshipID)
	}
}

// Broadcast sends msg to every client in the relationship's room.
func (h *Hub) Broadcast(relationshipID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[relationshipID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping message for slow client", "relationship_id", relationshipID, "type", msg.Type)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

func (h *Hub) RoomSize(relationshipID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[relationshipID])
}
