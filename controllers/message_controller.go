package controllers

import (
	"lifeline/models"
	"lifeline/services"
	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MessageController struct {
	smsService *services.SMSService
	validator  *utils.ValidationService
}

func NewMessageController(smsService *services.SMSService) *MessageController {
	return &MessageController{
		smsService: smsService,
		validator:  utils.NewValidationService(),
	}
}

// SendMessage sends an ad hoc text, by default to the configured test recipient.
func (mc *MessageController) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := mc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	resp, err := mc.smsService.SendDirect(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Send message failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.RawResponse(c, resp)
}
