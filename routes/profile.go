// routes/profile.go
package routes

import (
	"lifeline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupProfileRoutes configures reporter profile routes
func SetupProfileRoutes(router *gin.RouterGroup, profileController *controllers.ProfileController) {
	router.POST("", profileController.UpsertProfile)
	router.GET("/:userId", profileController.GetProfile)
}

// SetupSymptomRoutes configures the symptom checker
func SetupSymptomRoutes(router *gin.RouterGroup, symptomController *controllers.SymptomController) {
	router.POST("/check", symptomController.CheckSymptoms)
}
