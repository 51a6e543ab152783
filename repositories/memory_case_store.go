package repositories

import (
	"context"
	"lifeline/models"
	"lifeline/utils"
	"sort"
	"sync"
	"time"
)

// MemoryCaseStore keeps cases in process memory. Used for development and tests.
type MemoryCaseStore struct {
	mu    sync.RWMutex
	cases map[string]*models.EmergencyCase
	now   func() time.Time
}

func NewMemoryCaseStore() *MemoryCaseStore {
	return &MemoryCaseStore{
		cases: make(map[string]*models.EmergencyCase),
		now:   time.Now,
	}
}

func (s *MemoryCaseStore) Create(ctx context.Context, input models.NewCase) (*models.EmergencyCase, error) {
	record, err := newCaseRecord(input, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if _, exists := s.cases[record.EmergencyID]; !exists {
			break
		}
		record.EmergencyID = utils.GenerateUUID()
	}
	s.cases[record.EmergencyID] = record

	out := *record
	return &out, nil
}

func (s *MemoryCaseStore) GetByID(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cases[emergencyID]
	if !ok {
		return nil, utils.NewCaseNotFoundError(emergencyID)
	}
	out := *record
	return &out, nil
}

func (s *MemoryCaseStore) GetAll(ctx context.Context) ([]models.EmergencyCase, error) {
	s.mu.RLock()
	out := make([]models.EmergencyCase, 0, len(s.cases))
	for _, record := range s.cases {
		out = append(out, *record)
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryCaseStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.EmergencyCase, error) {
	limit := cutoff.UnixMilli()

	s.mu.RLock()
	var out []models.EmergencyCase
	for _, record := range s.cases {
		if record.Status == models.CaseStatusPending && record.Date <= limit {
			out = append(out, *record)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryCaseStore) UpdateStatus(ctx context.Context, emergencyID, status string) (*models.EmergencyCase, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.cases[emergencyID]
	if !ok {
		return nil, "", utils.NewCaseNotFoundError(emergencyID)
	}
	if err := checkTransition(record, status); err != nil {
		return nil, "", err
	}

	prev := record.Status
	record.Status = status
	record.UpdatedAt = s.now().UnixMilli()

	out := *record
	return &out, prev, nil
}

func (s *MemoryCaseStore) UpdatePriority(ctx context.Context, emergencyID, priority string) (*models.EmergencyCase, error) {
	if err := checkPriority(priority); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.cases[emergencyID]
	if !ok {
		return nil, utils.NewCaseNotFoundError(emergencyID)
	}
	record.Priority = priority
	record.UpdatedAt = s.now().UnixMilli()

	out := *record
	return &out, nil
}

func (s *MemoryCaseStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.cases)), nil
}

// sortNewestFirst orders by date descending, breaking ties by id so the
// listing is stable between polls.
func sortNewestFirst(cases []models.EmergencyCase) {
	sort.Slice(cases, func(i, j int) bool {
		if cases[i].Date != cases[j].Date {
			return cases[i].Date > cases[j].Date
		}
		return cases[i].EmergencyID < cases[j].EmergencyID
	})
}
