package ws

import (
	"encoding/json"
	"log"
	"sync"

	"gala_server/internal/metrics"
)

// Audience groups. Teams get dynamic "team:<id>" groups on top.
const (
	GroupPlayers = "players"
	GroupScreens = "screens"
	GroupAdmins  = "admins"
)

// TeamGroup names the per-team sub-group.
func TeamGroup(teamID string) string {
	return "team:" + teamID
}

// Hub tracks live connections and their audience groups and fans
// messages out to them. It never touches game state: the controller
// decides what goes to whom, the hub only delivers.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	metrics.ConnectedClients.WithLabelValues(string(c.Role)).Inc()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	for _, members := range h.groups {
		delete(members, c.ID)
	}
	h.mu.Unlock()
	metrics.ConnectedClients.WithLabelValues(string(c.Role)).Dec()
}

func (h *Hub) JoinGroup(group, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[connID] = c
}

// ClearGroup empties a group without touching the connections.
func (h *Hub) ClearGroup(group string) {
	h.mu.Lock()
	delete(h.groups, group)
	h.mu.Unlock()
}

func (h *Hub) LeaveGroup(group, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[group]; ok {
		delete(members, connID)
	}
}

// SendTo queues a message for one connection. Reports false when the
// connection is unknown or its queue is full (slow consumer).
func (h *Hub) SendTo(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Hub.SendTo: marshal error: %v", err)
		return false
	}
	return h.push(c, data, msg.Type)
}

// Broadcast fans a message out to every member of a group.
func (h *Hub) Broadcast(group string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Hub.Broadcast: marshal error: %v", err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[group]))
	for _, c := range h.groups[group] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		h.push(c, data, msg.Type)
	}
	metrics.BroadcastsSent.WithLabelValues(group).Inc()
}

func (h *Hub) push(c *Client, data []byte, msgType string) bool {
	defer func() {
		// Send may already be closed by a concurrent disconnect; a
		// dropped message to a dead connection is not an error.
		if recover() != nil {
			log.Printf("Hub.push: conn=%s already closed, dropped %s", c.ID, msgType)
		}
	}()
	select {
	case c.Send <- data:
		return true
	default:
		log.Printf("Hub.push: conn=%s send buffer full, dropped %s", c.ID, msgType)
		return false
	}
}

// CloseConn flushes and closes one connection. Used for eviction:
// queue the kicked notice first, then CloseConn, and the write pump
// delivers the notice before the close frame.
func (h *Hub) CloseConn(connID string) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if ok {
		c.CloseSend()
	}
}

// Count returns the number of live connections with the given role.
func (h *Hub) Count(role Role) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if c.Role == role {
			n++
		}
	}
	return n
}
