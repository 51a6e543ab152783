// routes/websocket.go
package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes configures the triage event stream
func SetupWebSocketRoutes(router *gin.RouterGroup, wsController *controllers.WebSocketController, guard *middleware.AdminGuard) {
	router.Use(guard.RequireOperator())
	router.GET("/triage", wsController.HandleTriage)
	router.GET("/stats", wsController.GetStats)
}
