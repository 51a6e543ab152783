package utils

import (
	"errors"
	"fmt"
	"lifeline/models"
	"net/http"
)

// Sentinel errors, matched with errors.Is across layers.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCoordinates  = fmt.Errorf("%w: coordinates out of range", ErrValidation)
	ErrCaseNotFound        = errors.New("emergency case not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPersistence         = errors.New("persistence failure")
	ErrNotConfigured       = errors.New("service not configured")
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    string `json:"details,omitempty"`
	Cause      error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) error {
	return ServiceError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// GetServiceError extracts a ServiceError from an error chain
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// NewValidationError reports bad client input. It matches ErrValidation.
func NewValidationError(message string) error {
	return ServiceError{
		Code:       models.ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      ErrValidation,
	}
}

func NewInvalidCoordinatesError(lat, long float64) error {
	return ServiceError{
		Code:       models.ErrCodeInvalidCoordinates,
		Message:    "Latitude must be within [-90, 90] and longitude within [-180, 180]",
		Details:    fmt.Sprintf("lat=%v long=%v", lat, long),
		StatusCode: http.StatusBadRequest,
		Cause:      ErrInvalidCoordinates,
	}
}

func NewCaseNotFoundError(id string) error {
	return ServiceError{
		Code:       models.ErrCodeNotFound,
		Message:    "Emergency not found",
		Details:    id,
		StatusCode: http.StatusNotFound,
		Cause:      ErrCaseNotFound,
	}
}

func NewProfileNotFoundError(userID string) error {
	return ServiceError{
		Code:       models.ErrCodeNotFound,
		Message:    "Profile not found",
		Details:    userID,
		StatusCode: http.StatusNotFound,
		Cause:      ErrProfileNotFound,
	}
}

func NewHospitalNotFoundError(name string) error {
	return ServiceError{
		Code:       models.ErrCodeNotFound,
		Message:    "Hospital not found",
		Details:    name,
		StatusCode: http.StatusNotFound,
		Cause:      ErrHospitalNotFound,
	}
}

func NewInvalidTransitionError(from, to string) error {
	return ServiceError{
		Code:       models.ErrCodeInvalidTransition,
		Message:    fmt.Sprintf("Cannot move case from %s to %s", from, to),
		StatusCode: http.StatusConflict,
		Cause:      ErrInvalidTransition,
	}
}

// NewPersistenceError wraps a backend failure. The cause keeps both the
// driver error and ErrPersistence in the chain.
func NewPersistenceError(operation string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodePersistence,
		Message:    fmt.Sprintf("Database operation failed: %s", operation),
		StatusCode: http.StatusInternalServerError,
		Cause:      errors.Join(ErrPersistence, cause),
	}
}

func NewUpstreamError(service string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeExternal,
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: http.StatusBadGateway,
		Cause:      errors.Join(ErrUpstreamUnavailable, cause),
	}
}

func NewNotConfiguredError(service string) error {
	return ServiceError{
		Code:       models.ErrCodeUnavailable,
		Message:    fmt.Sprintf("%s is not configured", service),
		StatusCode: http.StatusServiceUnavailable,
		Cause:      ErrNotConfigured,
	}
}

// StatusFor maps an error chain onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrCaseNotFound), errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrHospitalNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	}
	if serviceErr, ok := GetServiceError(err); ok && serviceErr.StatusCode != 0 {
		return serviceErr.StatusCode
	}
	return http.StatusInternalServerError
}
