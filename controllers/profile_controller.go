package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	profileService *services.ProfileService
	validator      *utils.ValidationService
}

func NewProfileController(profileService *services.ProfileService) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		validator:      utils.NewValidationService(),
	}
}

// UpsertProfile stores the signup form's medical profile and contacts.
func (pc *ProfileController) UpsertProfile(c *gin.Context) {
	var req models.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := pc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	profile, err := pc.profileService.UpsertProfile(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile saved", profile)
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	profile, err := pc.profileService.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, profile)
}
