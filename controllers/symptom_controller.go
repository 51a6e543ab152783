package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
)

type SymptomController struct {
	symptomService *services.SymptomService
	validator      *utils.ValidationService
}

func NewSymptomController(symptomService *services.SymptomService) *SymptomController {
	return &SymptomController{
		symptomService: symptomService,
		validator:      utils.NewValidationService(),
	}
}

func (sc *SymptomController) CheckSymptoms(c *gin.Context) {
	var req models.SymptomCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := sc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := sc.symptomService.Check(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, result)
}
