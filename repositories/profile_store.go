package repositories

import (
	"context"
	"lifeline/models"
	"lifeline/utils"
	"sync"
	"time"
)

// ProfileStore reads and writes reporter profiles. The case lifecycle only
// reads them; the signup flow writes them.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.UserProfile)}
}

func (s *MemoryProfileStore) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, utils.NewProfileNotFoundError(userID)
	}
	return cloneProfile(profile), nil
}

func (s *MemoryProfileStore) Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		return nil, utils.NewValidationError("userId is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *cloneProfile(*profile)
	if existing, ok := s.profiles[profile.UserID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.profiles[profile.UserID] = stored

	return cloneProfile(stored), nil
}

func cloneProfile(p models.UserProfile) *models.UserProfile {
	p.Diseases = append([]string(nil), p.Diseases...)
	p.EmergencyContacts = append([]models.EmergencyContact(nil), p.EmergencyContacts...)
	return &p
}
