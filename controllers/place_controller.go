package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type PlaceController struct {
	placesService *services.PlacesService
	validator     *utils.ValidationService
}

func NewPlaceController(placesService *services.PlacesService) *PlaceController {
	return &PlaceController{
		placesService: placesService,
		validator:     utils.NewValidationService(),
	}
}

// GetNearbyPlaces proxies a nearby search around lat/lng.
func (pc *PlaceController) GetNearbyPlaces(c *gin.Context) {
	var query models.NearbyPlacesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "lat and lng must be numbers")
		return
	}
	if c.Query("lat") == "" || c.Query("lng") == "" {
		utils.BadRequestResponse(c, "lat and lng are required")
		return
	}
	if validationErrors := pc.validator.ValidateStruct(query); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	resp, err := pc.placesService.Nearby(c.Request.Context(), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, resp)
}
