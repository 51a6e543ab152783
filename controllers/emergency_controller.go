package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type EmergencyController struct {
	caseService *services.CaseService
	validator   *utils.ValidationService
}

func NewEmergencyController(caseService *services.CaseService) *EmergencyController {
	return &EmergencyController{
		caseService: caseService,
		validator:   utils.NewValidationService(),
	}
}

// =================== INTAKE ===================

// CreateSOS records a new emergency case and returns it as stored.
func (ec *EmergencyController) CreateSOS(c *gin.Context) {
	var req models.CreateSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	created, err := ec.caseService.CreateCase(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Create SOS failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, created)
}

// =================== TRIAGE VIEWS ===================

// GetAllEmergencies lists every case, newest first.
func (ec *EmergencyController) GetAllEmergencies(c *gin.Context) {
	cases, err := ec.caseService.ListCases(c.Request.Context())
	if err != nil {
		logrus.Errorf("List emergencies failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, cases)
}

// GetEmergencyData returns one case with the reporter's profile under "user".
func (ec *EmergencyController) GetEmergencyData(c *gin.Context) {
	emergencyID := strings.TrimSpace(c.Param("emergencyId"))
	if emergencyID == "" {
		utils.BadRequestResponse(c, "Emergency ID is required")
		return
	}

	detail, err := ec.caseService.GetCaseWithProfile(c.Request.Context(), emergencyID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, detail)
}

// =================== TRIAGE ACTIONS ===================

func (ec *EmergencyController) UpdateStatus(c *gin.Context) {
	emergencyID := c.Param("emergencyId")

	var req models.UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	updated, err := ec.caseService.Transition(c.Request.Context(), emergencyID, req.Status)
	if err != nil {
		logrus.WithField("emergencyId", emergencyID).Warnf("Status update to %s failed: %v", req.Status, err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, updated)
}

func (ec *EmergencyController) UpdatePriority(c *gin.Context) {
	emergencyID := c.Param("emergencyId")

	var req models.UpdateCasePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := ec.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	updated, err := ec.caseService.UpdatePriority(c.Request.Context(), emergencyID, req.Priority)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, updated)
}
