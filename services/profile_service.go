package services

import (
	"context"
	"lifeline/models"
	"lifeline/repositories"
	"lifeline/utils"
	"strings"

	"github.com/sirupsen/logrus"
)

// ProfileService stores the reporter profiles written by the signup form.
type ProfileService struct {
	store       repositories.ProfileStore
	countryCode string
}

func NewProfileService(store repositories.ProfileStore, countryCode string) *ProfileService {
	return &ProfileService{
		store:       store,
		countryCode: countryCode,
	}
}

func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, utils.NewValidationError("userId is required")
	}
	return ps.store.GetByUserID(ctx, userID)
}

func (ps *ProfileService) UpsertProfile(ctx context.Context, req models.UpsertProfileRequest) (*models.UserProfile, error) {
	userID := strings.TrimSpace(req.ResolvedUserID())
	if userID == "" {
		return nil, utils.NewValidationError("clerkUserId or userId is required")
	}

	contacts := make([]models.EmergencyContact, 0, len(req.EmergencyContacts))
	for _, c := range req.EmergencyContacts {
		number := utils.NormalizePhoneNumber(c.Number, ps.countryCode)
		if number == "" {
			return nil, utils.NewValidationError("invalid emergency contact number for " + c.Name)
		}
		contacts = append(contacts, models.EmergencyContact{
			Name:   utils.SanitizeInput(c.Name),
			Number: number,
		})
	}

	profile := &models.UserProfile{
		UserID:            userID,
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Username:          utils.SanitizeInput(req.Username),
		Phone:             utils.NormalizePhoneNumber(req.Phone, ps.countryCode),
		BloodGroup:        strings.ToUpper(strings.TrimSpace(req.BloodGroup)),
		Diseases:          req.Diseases,
		EmergencyContacts: contacts,
		AadharDetails:     strings.TrimSpace(req.AadharDetails),
		Age:               int(req.Age),
		IsVolunteer:       req.IsVolunteer,
	}

	saved, err := ps.store.Upsert(ctx, profile)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userId":   saved.UserID,
		"contacts": len(saved.EmergencyContacts),
	}).Info("Profile saved")
	return saved, nil
}
