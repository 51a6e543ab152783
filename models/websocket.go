// models/websocket.go
package models

import (
	"time"
)

// WebSocket Message Types
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Room      string      `json:"room,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

// CaseEvent is published whenever a case is created, changes, or goes stale.
// It travels over the event bus and is pushed as-is to triage viewers.
type CaseEvent struct {
	Type       string        `json:"type"`
	Case       EmergencyCase `json:"case"`
	PrevStatus string        `json:"prevStatus,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

type WSError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WebSocket Request Types
type WSRequest struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// WebSocket Event Constants
const (
	EventEmergencyCreated = "emergency_created"
	EventEmergencyUpdated = "emergency_updated"
	EventEmergencyStale   = "emergency_stale"

	WSTypeSnapshot         = "snapshot"
	WSTypeConnectionStatus = "connection_status"
	WSTypePing             = "ping"
	WSTypePong             = "pong"
	WSTypeError            = "error"

	WSRequestSnapshot  = "snapshot_request"
	WSRequestSubscribe = "subscribe"

	WSErrorInvalidMessage = "INVALID_MESSAGE"
	WSErrorRateLimit      = "RATE_LIMIT"
	WSErrorUnavailable    = "UNAVAILABLE"
)

// TriageRoom is the room every triage viewer joins.
const TriageRoom = "triage"

// WebSocket Hub Stats
type WSHubStats struct {
	ActiveConnections int                    `json:"activeConnections"`
	TotalConnections  int64                  `json:"totalConnections"`
	MessagesSent      int64                  `json:"messagesSent"`
	MessagesDropped   int64                  `json:"messagesDropped"`
	Rooms             map[string]WSRoomStats `json:"rooms"`
	Uptime            string                 `json:"uptime"`
}

type WSRoomStats struct {
	Clients      int       `json:"clients"`
	Messages     int64     `json:"messages"`
	LastActivity time.Time `json:"lastActivity"`
}
