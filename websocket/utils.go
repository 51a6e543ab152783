package websocket

import (
	"lifeline/models"
	"lifeline/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already restricts browser origins on the HTTP side.
		logrus.Debugf("WebSocket connection from origin: %s", r.Header.Get("Origin"))
		return true
	},
}

// validateWebSocketMessage validates incoming WebSocket message structure
func validateWebSocketMessage(msg models.WSRequest) error {
	if msg.Type == "" {
		return utils.NewValidationError("Message type is required")
	}
	if msg.Type == models.WSRequestSubscribe && msg.Data == nil {
		return utils.NewValidationError("Subscription data is required")
	}
	return nil
}

func createSuccessResponse(message string, data interface{}, requestID string) models.WSMessage {
	responseData := map[string]interface{}{
		"success": true,
		"message": message,
	}
	if data != nil {
		responseData["data"] = data
	}

	return models.WSMessage{
		Type:      "success",
		Data:      responseData,
		Timestamp: time.Now(),
		RequestID: requestID,
	}
}

func createErrorResponse(code, message, requestID string) models.WSMessage {
	return models.WSMessage{
		Type: models.WSTypeError,
		Data: models.WSError{
			Code:      code,
			Message:   message,
			Timestamp: time.Now(),
		},
		Timestamp: time.Now(),
		RequestID: requestID,
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func logWebSocketEvent(client *Client, eventType string, data interface{}) {
	logrus.WithFields(logrus.Fields{
		"connectionId": client.connectionID,
		"viewerId":     client.viewerID,
		"ip":           client.ipAddress,
		"event":        eventType,
		"data":         data,
	}).Debug("WebSocket event")
}
