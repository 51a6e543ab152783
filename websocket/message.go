package websocket

import (
	"encoding/json"
	"fmt"
	"lifeline/models"
	"lifeline/utils"
	"time"
)

// RequestHandler answers one inbound request type.
type RequestHandler func(c *Client, request models.WSRequest) error

// MessageRouter dispatches viewer requests by type.
type MessageRouter struct {
	handlers map[string]RequestHandler
}

func NewMessageRouter() *MessageRouter {
	return &MessageRouter{
		handlers: make(map[string]RequestHandler),
	}
}

func (mr *MessageRouter) RegisterHandler(messageType string, handler RequestHandler) {
	mr.handlers[messageType] = handler
}

func (mr *MessageRouter) RouteMessage(c *Client, request models.WSRequest) error {
	handler, exists := mr.handlers[request.Type]
	if !exists {
		return utils.NewValidationError("Unknown message type: " + request.Type)
	}
	return handler(c, request)
}

func newTriageRouter(hub *Hub) *MessageRouter {
	router := NewMessageRouter()

	router.RegisterHandler(models.WSTypePing, func(c *Client, request models.WSRequest) error {
		c.SendMessage(models.WSMessage{
			Type:      models.WSTypePong,
			Timestamp: time.Now(),
			RequestID: request.RequestID,
		})
		return nil
	})

	router.RegisterHandler(models.WSRequestSnapshot, func(c *Client, request models.WSRequest) error {
		go hub.sendSnapshot(c, request.RequestID)
		return nil
	})

	router.RegisterHandler(models.WSRequestSubscribe, func(c *Client, request models.WSRequest) error {
		var sub struct {
			Types []string `json:"types"`
		}
		if err := unmarshalMapToStruct(request.Data, &sub); err != nil {
			return utils.NewValidationError("Invalid subscription data")
		}
		for _, t := range sub.Types {
			if !isCaseEventType(t) {
				return utils.NewValidationError(fmt.Sprintf("Unknown event type: %s", t))
			}
		}
		c.setSubscriptions(sub.Types)
		c.SendMessage(createSuccessResponse("Subscribed", sub.Types, request.RequestID))
		return nil
	})

	return router
}

func isCaseEventType(t string) bool {
	switch t {
	case models.EventEmergencyCreated, models.EventEmergencyUpdated, models.EventEmergencyStale:
		return true
	}
	return false
}

func unmarshalMapToStruct(data map[string]interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
