// routes/place.go
package routes

import (
	"lifeline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupPlaceRoutes configures the nearby search proxy
func SetupPlaceRoutes(router *gin.RouterGroup, placeController *controllers.PlaceController) {
	router.GET("/nearby", placeController.GetNearbyPlaces)
}

// SetupHospitalRoutes configures hospital bed availability routes
func SetupHospitalRoutes(router *gin.RouterGroup, hospitalController *controllers.HospitalController) {
	router.GET("", hospitalController.GetHospitals)
	router.GET("/:name", hospitalController.GetHospital)
}
