package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks which clients are attached to which conversation and fans
// messages out to them. Conversations with no members occupy no state.
type Hub struct {
	mu      sync.RWMutex
	members map[int64]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{members: make(map[int64]map[*Client]bool)}
}

// Join attaches a client to a conversation. Joining twice is a no-op.
func (h *Hub) Join(conversationID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.members[conversationID]
	if !ok {
		set = make(map[*Client]bool)
		h.members[conversationID] = set
	}
	set[c] = true
}

// Leave detaches a client. Leaving a conversation the client is not in is a
// no-op.
func (h *Hub) Leave(conversationID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.members[conversationID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.members, conversationID)
	}
}

// Publish delivers msg to every current member of the conversation, the
// sender included. A member whose queue is full is dropped by its own Send;
// delivery to the rest continues. Returns the number of clients the message
// was queued for.
func (h *Hub) Publish(conversationID int64, msg []byte) int {
	h.mu.RLock()
	set := h.members[conversationID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if err := c.Send(msg); err == nil {
			delivered++
		}
	}
	return delivered
}

// MemberCount reports the number of clients attached to a conversation.
func (h *Hub) MemberCount(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members[conversationID])
}

// TotalMembers reports connected clients across all conversations.
func (h *Hub) TotalMembers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.members {
		total += len(set)
	}
	return total
}

// CloseAll disconnects every client. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, set := range h.members {
		for c := range set {
			c.Close(websocket.CloseGoingAway, "")
		}
		delete(h.members, id)
	}
}
