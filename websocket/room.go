package websocket

import (
	"lifeline/models"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Room groups viewers that receive the same broadcasts.
type Room struct {
	ID string

	clients map[*Client]bool
	mutex   sync.RWMutex

	createdAt    time.Time
	lastActivity time.Time
	messageCount int64
}

func NewRoom(id string) *Room {
	logrus.Debugf("Created new room: %s", id)
	return &Room{
		ID:           id,
		clients:      make(map[*Client]bool),
		createdAt:    time.Now(),
		lastActivity: time.Now(),
	}
}

// AddClient adds a client to the room
func (r *Room) AddClient(client *Client) {
	if client == nil {
		return
	}

	r.mutex.Lock()
	if r.clients[client] {
		r.mutex.Unlock()
		return
	}
	r.clients[client] = true
	r.lastActivity = time.Now()
	count := len(r.clients)
	r.mutex.Unlock()

	logrus.Debugf("Viewer %s joined room %s (Total: %d)", client.viewerID, r.ID, count)

	client.SendMessage(models.WSMessage{
		Type: models.WSTypeConnectionStatus,
		Data: map[string]interface{}{
			"connectionId": client.connectionID,
			"status":       "joined_room",
			"viewers":      count,
		},
		Room:      r.ID,
		Timestamp: time.Now(),
	})
}

// RemoveClient removes a client from the room
func (r *Room) RemoveClient(client *Client) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.clients[client] {
		return
	}
	delete(r.clients, client)
	r.lastActivity = time.Now()
}

// Broadcast queues message for every subscribed client and reports how many
// were queued and how many dropped on a full buffer.
func (r *Room) Broadcast(message models.WSMessage) (sent, dropped int) {
	r.mutex.Lock()
	r.lastActivity = time.Now()
	r.messageCount++
	clients := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	r.mutex.Unlock()

	for _, client := range clients {
		if !client.isSubscribed(message.Type) {
			continue
		}
		if client.SendMessage(message) {
			sent++
		} else {
			dropped++
		}
	}
	return sent, dropped
}

func (r *Room) IsEmpty() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.clients) == 0
}

func (r *Room) GetClientCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.clients)
}

func (r *Room) GetLastActivity() time.Time {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.lastActivity
}

func (r *Room) GetMessageCount() int64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.messageCount
}
