package websocket

import (
	"encoding/json"
	"lifeline/models"
	"lifeline/utils"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for client send channel
	sendBufferSize = 256
)

// Client is one dashboard connection. Viewers only read the event stream;
// inbound messages are limited to pings, snapshot requests and
// subscription changes.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Connection metadata
	connectionID string
	viewerID     string
	connectedAt  time.Time
	lastActivity int64
	ipAddress    string
	userAgent    string

	// Buffered channel of outbound messages. Never closed; done ends the writer.
	send chan models.WSMessage
	done chan struct{}
	once sync.Once

	limiter *rate.Limiter

	// Event types this viewer wants. Empty means all.
	subscriptions map[string]bool
	subMutex      sync.RWMutex
}

func NewClient(conn *websocket.Conn, hub *Hub, r *http.Request, viewerID string) *Client {
	if viewerID == "" {
		viewerID = "anonymous"
	}

	return &Client{
		conn:          conn,
		hub:           hub,
		connectionID:  utils.GenerateUUID(),
		viewerID:      viewerID,
		connectedAt:   time.Now(),
		lastActivity:  time.Now().UnixNano(),
		ipAddress:     getClientIP(r),
		userAgent:     r.UserAgent(),
		send:          make(chan models.WSMessage, sendBufferSize),
		done:          make(chan struct{}),
		limiter:       rate.NewLimiter(rate.Every(time.Minute/60), 10), // 60 requests per minute
		subscriptions: make(map[string]bool),
	}
}

// ServeTriage upgrades the request and attaches the viewer to the hub.
func ServeTriage(hub *Hub, w http.ResponseWriter, r *http.Request, viewerID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, hub, r, viewerID)

	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

func (c *Client) ReadPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("WebSocket error for viewer %s: %v", c.viewerID, err)
			}
			return
		}
		c.touch()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !c.limiter.Allow() {
			c.sendError(models.WSErrorRateLimit, "Rate limit exceeded", "")
			continue
		}

		c.handleMessage(messageData)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				logrus.Errorf("Write error for viewer %s: %v", c.viewerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.Warnf("Ping failed for viewer %s, disconnecting", c.viewerID)
				return
			}
		}
	}
}

func (c *Client) handleMessage(messageData []byte) {
	var request models.WSRequest
	if err := json.Unmarshal(messageData, &request); err != nil {
		c.sendError(models.WSErrorInvalidMessage, "Invalid message format", "")
		return
	}
	if err := validateWebSocketMessage(request); err != nil {
		c.sendError(models.WSErrorInvalidMessage, err.Error(), request.RequestID)
		return
	}

	if err := c.hub.router.RouteMessage(c, request); err != nil {
		c.sendError(models.WSErrorInvalidMessage, err.Error(), request.RequestID)
	}
}

// SendMessage queues message without blocking and reports whether it was queued.
func (c *Client) SendMessage(message models.WSMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		logrus.Warnf("Send channel full for viewer %s", c.viewerID)
		return false
	}
}

func (c *Client) sendError(code, message, requestID string) {
	c.SendMessage(createErrorResponse(code, message, requestID))
}

func (c *Client) setSubscriptions(types []string) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()

	c.subscriptions = make(map[string]bool, len(types))
	for _, t := range types {
		c.subscriptions[t] = true
	}
}

func (c *Client) isSubscribed(eventType string) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()

	if len(c.subscriptions) == 0 {
		return true
	}
	return c.subscriptions[eventType]
}

func (c *Client) touch() {
	atomic.StoreInt64(&c.lastActivity, time.Now().UnixNano())
}

func (c *Client) idleFor() time.Duration {
	return time.Since(time.Unix(0, atomic.LoadInt64(&c.lastActivity)))
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)

		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}

		c.conn.Close()
		logWebSocketEvent(c, "disconnected", utils.FormatDuration(time.Since(c.connectedAt)))
	})
}
