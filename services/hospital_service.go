package services

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/repositories"
	"lifeline/utils"
	"strings"
)

// MatchThreshold is the minimum name similarity for a place to be joined
// with a stored hospital.
const MatchThreshold = 0.7

type HospitalService struct {
	store repositories.HospitalStore
}

func NewHospitalService(store repositories.HospitalStore) *HospitalService {
	return &HospitalService{store: store}
}

func (hs *HospitalService) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := hs.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if hospitals == nil {
		hospitals = []models.Hospital{}
	}
	return hospitals, nil
}

// GetHospital looks a hospital up by exact name, then by closest name.
func (hs *HospitalService) GetHospital(ctx context.Context, name string) (*models.Hospital, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewValidationError("hospital name is required")
	}

	hospital, err := hs.store.GetByName(ctx, name)
	if err == nil {
		return hospital, nil
	}
	if !errors.Is(err, utils.ErrHospitalNotFound) {
		return nil, err
	}

	hospitals, err := hs.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if idx, _ := utils.BestMatch(name, hospitalNames(hospitals), MatchThreshold); idx >= 0 {
		return &hospitals[idx], nil
	}
	return nil, utils.NewHospitalNotFoundError(name)
}

// MatchPlaces attaches stored bed data to each place whose name is close
// enough to a known hospital.
func (hs *HospitalService) MatchPlaces(ctx context.Context, places []models.PlaceSummary) error {
	if len(places) == 0 {
		return nil
	}

	hospitals, err := hs.store.GetAll(ctx)
	if err != nil {
		return err
	}
	names := hospitalNames(hospitals)

	for i := range places {
		if idx, _ := utils.BestMatch(places[i].Name, names, MatchThreshold); idx >= 0 {
			h := hospitals[idx]
			places[i].Hospital = &h
		}
	}
	return nil
}

func hospitalNames(hospitals []models.Hospital) []string {
	names := make([]string, len(hospitals))
	for i, h := range hospitals {
		names[i] = h.Name
	}
	return names
}
