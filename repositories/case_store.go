package repositories

import (
	"context"
	"lifeline/models"
	"lifeline/utils"
	"strings"
	"time"
)

// CaseStore persists emergency cases. Implementations must assign unique ids
// under concurrent writers and apply status transitions atomically.
type CaseStore interface {
	Create(ctx context.Context, input models.NewCase) (*models.EmergencyCase, error)
	GetByID(ctx context.Context, emergencyID string) (*models.EmergencyCase, error)
	// GetAll returns every case, newest first.
	GetAll(ctx context.Context) ([]models.EmergencyCase, error)
	// ListPendingBefore returns pending cases created at or before cutoff.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.EmergencyCase, error)
	// UpdateStatus moves a case to status if the lifecycle allows it and
	// returns the updated case together with the status it left.
	UpdateStatus(ctx context.Context, emergencyID, status string) (*models.EmergencyCase, string, error)
	UpdatePriority(ctx context.Context, emergencyID, priority string) (*models.EmergencyCase, error)
	Count(ctx context.Context) (int64, error)
}

// newCaseRecord validates input and builds the record every backend stores.
func newCaseRecord(input models.NewCase, now time.Time) (*models.EmergencyCase, error) {
	if (input.Lat == nil) != (input.Long == nil) {
		return nil, utils.NewValidationError("lat and long must be provided together")
	}
	if input.Lat == nil {
		return nil, utils.NewValidationError("lat and long are required")
	}
	if !utils.IsValidCoordinate(*input.Lat, *input.Long) {
		return nil, utils.NewInvalidCoordinatesError(*input.Lat, *input.Long)
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, utils.NewValidationError("userId is required")
	}

	cause := strings.TrimSpace(input.Cause)
	if cause == "" {
		cause = models.DefaultCause
	}
	priority := input.Priority
	if !models.IsValidPriority(priority) {
		priority = models.PriorityHigh
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = models.FallbackLocation(*input.Lat, *input.Long)
	}

	return &models.EmergencyCase{
		EmergencyID:   utils.GenerateUUID(),
		UserID:        input.UserID,
		Lat:           *input.Lat,
		Long:          *input.Long,
		Location:      location,
		Cause:         cause,
		Priority:      priority,
		Status:        models.CaseStatusPending,
		Date:          now.UnixMilli(),
		HeartRate:     input.Vitals.HeartRate,
		BloodPressure: input.Vitals.BloodPressure,
		Spo2:          input.Vitals.Spo2,
	}, nil
}

// checkTransition validates a status change against the current record.
func checkTransition(current *models.EmergencyCase, status string) error {
	if !models.IsValidStatus(status) {
		return utils.NewValidationError("unknown status " + status)
	}
	if !models.CanTransition(current.Status, status) {
		return utils.NewInvalidTransitionError(current.Status, status)
	}
	return nil
}

func checkPriority(priority string) error {
	if !models.IsValidPriority(priority) {
		return utils.NewValidationError("unknown priority " + priority)
	}
	return nil
}
