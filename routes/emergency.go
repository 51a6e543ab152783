// routes/emergency.go
package routes

import (
	"lifeline/controllers"
	"lifeline/middleware"

	"github.com/gin-gonic/gin"
)

// SetupEmergencyRoutes configures SOS intake and triage routes
func SetupEmergencyRoutes(router *gin.RouterGroup, emergencyController *controllers.EmergencyController, guard *middleware.AdminGuard) {
	router.POST("/create-sos", emergencyController.CreateSOS)
	router.GET("/all-emergency", emergencyController.GetAllEmergencies)
	router.GET("/get-emergency-data/:emergencyId", emergencyController.GetEmergencyData)

	triage := router.Group("/emergency/:emergencyId")
	triage.Use(guard.RequireOperator())
	{
		triage.PATCH("/status", emergencyController.UpdateStatus)
		triage.PATCH("/priority", emergencyController.UpdatePriority)
	}
}
