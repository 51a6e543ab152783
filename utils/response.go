package utils

import (
	"errors"
	"lifeline/models"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Success responses
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// RawResponse writes the payload without the envelope. The dashboard and
// mobile client read legacy endpoints as bare records.
func RawResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, message string, details interface{}) {
	writeError(c, statusCode, getErrorCode(statusCode), message, details)
}

func writeError(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

func ValidationErrorResponse(c *gin.Context, validationErrors []ValidationError) {
	writeError(c, http.StatusBadRequest, models.ErrCodeValidation, "Validation failed", validationErrors)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message, nil)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	writeError(c, http.StatusUnauthorized, models.ErrCodeAuthentication, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	writeError(c, http.StatusForbidden, models.ErrCodeAuthorization, message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	writeError(c, http.StatusNotFound, models.ErrCodeNotFound, resource+" not found", nil)
}

func RateLimitResponse(c *gin.Context) {
	writeError(c, http.StatusTooManyRequests, models.ErrCodeRateLimit, "Rate limit exceeded", nil)
}

func InternalServerErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	writeError(c, http.StatusInternalServerError, models.ErrCodeInternal, message, nil)
}

// HandleServiceError maps a service error chain onto the error envelope.
// Internal causes are never echoed to the client.
func HandleServiceError(c *gin.Context, err error) {
	status := StatusFor(err)
	serviceErr, isServiceErr := GetServiceError(err)

	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		writeError(c, status, models.ErrCodeInvalidCoordinates, messageOr(serviceErr, isServiceErr, "Invalid coordinates"), nil)
	case errors.Is(err, ErrValidation):
		writeError(c, status, models.ErrCodeValidation, messageOr(serviceErr, isServiceErr, "Validation failed"), nil)
	case errors.Is(err, ErrCaseNotFound):
		NotFoundResponse(c, "Emergency")
	case errors.Is(err, ErrProfileNotFound):
		NotFoundResponse(c, "Profile")
	case errors.Is(err, ErrHospitalNotFound):
		NotFoundResponse(c, "Hospital")
	case errors.Is(err, ErrInvalidTransition):
		writeError(c, status, models.ErrCodeInvalidTransition, messageOr(serviceErr, isServiceErr, "Invalid status transition"), nil)
	case errors.Is(err, ErrNotConfigured):
		writeError(c, status, models.ErrCodeUnavailable, messageOr(serviceErr, isServiceErr, "Service unavailable"), nil)
	case errors.Is(err, ErrUpstreamUnavailable):
		writeError(c, status, models.ErrCodeExternal, messageOr(serviceErr, isServiceErr, "Upstream service failed"), nil)
	case errors.Is(err, ErrPersistence):
		writeError(c, http.StatusInternalServerError, models.ErrCodePersistence, "Failed to store emergency data", nil)
	default:
		InternalServerErrorResponse(c, "")
	}
}

func messageOr(serviceErr ServiceError, ok bool, fallback string) string {
	if ok && serviceErr.Message != "" {
		return serviceErr.Message
	}
	return fallback
}

// Helper functions
func getErrorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return models.ErrCodeValidation
	case http.StatusUnauthorized:
		return models.ErrCodeAuthentication
	case http.StatusForbidden:
		return models.ErrCodeAuthorization
	case http.StatusNotFound:
		return models.ErrCodeNotFound
	case http.StatusConflict:
		return models.ErrCodeConflict
	case http.StatusTooManyRequests:
		return models.ErrCodeRateLimit
	case http.StatusServiceUnavailable:
		return models.ErrCodeUnavailable
	case http.StatusBadGateway:
		return models.ErrCodeExternal
	default:
		return models.ErrCodeInternal
	}
}

// HealthCheckResponse creates a health check response
func HealthCheckResponse(services map[string]string, version, uptime string) models.HealthResponse {
	status := "healthy"
	for _, serviceStatus := range services {
		if serviceStatus != "healthy" && serviceStatus != "disabled" {
			status = "degraded"
			break
		}
	}

	return models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   version,
		Uptime:    uptime,
	}
}
