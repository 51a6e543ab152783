package controllers

import (
	"lifeline/middleware"
	"lifeline/utils"
	"lifeline/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleTriage upgrades a dashboard connection onto the triage event stream.
// The admin guard in front of it has already checked the operator token.
func (wsc *WebSocketController) HandleTriage(c *gin.Context) {
	if err := websocket.ServeTriage(wsc.hub, c.Writer, c.Request, middleware.GetOperatorID(c)); err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
		if !c.Writer.Written() {
			utils.BadRequestResponse(c, "WebSocket upgrade failed")
		}
	}
}

// GetStats reports hub connection counters.
func (wsc *WebSocketController) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, "WebSocket stats retrieved", wsc.hub.GetStats())
}
