// routes/message.go
package routes

import (
	"lifeline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupMessageRoutes configures the direct SMS route
func SetupMessageRoutes(router *gin.RouterGroup, messageController *controllers.MessageController) {
	router.POST("/send-message", messageController.SendMessage)
}
