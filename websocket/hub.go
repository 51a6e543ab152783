package websocket

import (
	"context"
	"lifeline/models"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// SnapshotFunc returns the current case list sent to a viewer on connect
// and on request.
type SnapshotFunc func(ctx context.Context) ([]models.EmergencyCase, error)

type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Rooms by id. Every viewer joins the triage room.
	rooms map[string]*Room

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast messages to rooms
	broadcast chan BroadcastMessage

	snapshot SnapshotFunc
	router   *MessageRouter

	stats HubStats

	// Mutex for thread safety
	mutex sync.RWMutex

	// Context for shutdown
	ctx    context.Context
	cancel context.CancelFunc

	cleanupTicker *time.Ticker
}

type BroadcastMessage struct {
	RoomID  string
	Message models.WSMessage
}

type HubStats struct {
	TotalConnections int64
	MessagesSent     int64
	MessagesDropped  int64
	StartTime        time.Time
}

func NewHub(snapshot SnapshotFunc) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, sendBufferSize),
		snapshot:   snapshot,
		stats: HubStats{
			StartTime: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
	hub.router = newTriageRouter(hub)
	hub.cleanupTicker = time.NewTicker(time.Minute)

	return hub
}

func (h *Hub) Run() {
	logrus.Info("WebSocket Hub starting...")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToRoom(message)

		case <-h.cleanupTicker.C:
			h.performCleanup()

		case <-h.ctx.Done():
			logrus.Info("WebSocket Hub shutting down...")
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	room := h.getOrCreateRoom(models.TriageRoom)
	active := len(h.clients)
	h.mutex.Unlock()

	atomic.AddInt64(&h.stats.TotalConnections, 1)
	room.AddClient(client)

	go h.sendSnapshot(client, "")

	logrus.Infof("Triage viewer connected: %s (Total: %d)", client.viewerID, active)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	for roomID, room := range h.rooms {
		room.RemoveClient(client)
		if room.IsEmpty() {
			delete(h.rooms, roomID)
		}
	}

	logrus.Infof("Triage viewer disconnected: %s (Total: %d)", client.viewerID, len(h.clients))
}

func (h *Hub) broadcastToRoom(broadcastMsg BroadcastMessage) {
	h.mutex.RLock()
	room := h.rooms[broadcastMsg.RoomID]
	h.mutex.RUnlock()

	if room == nil {
		return
	}
	sent, dropped := room.Broadcast(broadcastMsg.Message)
	atomic.AddInt64(&h.stats.MessagesSent, int64(sent))
	atomic.AddInt64(&h.stats.MessagesDropped, int64(dropped))
}

func (h *Hub) getOrCreateRoom(roomID string) *Room {
	if room, exists := h.rooms[roomID]; exists {
		return room
	}

	room := NewRoom(roomID)
	h.rooms[roomID] = room
	return room
}

// DeliverCaseEvent pushes a case event to every triage viewer on this instance.
func (h *Hub) DeliverCaseEvent(event models.CaseEvent) {
	message := models.WSMessage{
		Type:      event.Type,
		Data:      event,
		Room:      models.TriageRoom,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- BroadcastMessage{RoomID: models.TriageRoom, Message: message}:
	default:
		atomic.AddInt64(&h.stats.MessagesDropped, 1)
		logrus.Warnf("Broadcast channel full, dropping %s", event.Type)
	}
}

func (h *Hub) sendSnapshot(client *Client, requestID string) {
	if h.snapshot == nil {
		client.sendError(models.WSErrorUnavailable, "Snapshot not available", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	cases, err := h.snapshot(ctx)
	if err != nil {
		logrus.Errorf("Failed to load triage snapshot: %v", err)
		client.sendError(models.WSErrorUnavailable, "Failed to load cases", requestID)
		return
	}

	client.SendMessage(models.WSMessage{
		Type:      models.WSTypeSnapshot,
		Data:      cases,
		Room:      models.TriageRoom,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

func (h *Hub) GetStats() models.WSHubStats {
	h.mutex.RLock()
	rooms := make(map[string]models.WSRoomStats, len(h.rooms))
	for roomID, room := range h.rooms {
		rooms[roomID] = models.WSRoomStats{
			Clients:      room.GetClientCount(),
			Messages:     room.GetMessageCount(),
			LastActivity: room.GetLastActivity(),
		}
	}
	active := len(h.clients)
	h.mutex.RUnlock()

	return models.WSHubStats{
		ActiveConnections: active,
		TotalConnections:  atomic.LoadInt64(&h.stats.TotalConnections),
		MessagesSent:      atomic.LoadInt64(&h.stats.MessagesSent),
		MessagesDropped:   atomic.LoadInt64(&h.stats.MessagesDropped),
		Rooms:             rooms,
		Uptime:            time.Since(h.stats.StartTime).Round(time.Second).String(),
	}
}

func (h *Hub) performCleanup() {
	h.mutex.RLock()
	var idle []*Client
	for client := range h.clients {
		if client.idleFor() > 2*pongWait {
			idle = append(idle, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range idle {
		logrus.Warnf("Removing inactive viewer: %s", client.viewerID)
		go client.close()
	}
}

func (h *Hub) Shutdown() {
	logrus.Info("Shutting down WebSocket Hub...")

	h.cleanupTicker.Stop()
	h.cancel()

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]*Room)
	h.mutex.Unlock()

	for _, client := range clients {
		client.close()
	}

	logrus.Info("WebSocket Hub shutdown complete")
}
