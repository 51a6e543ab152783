package repositories

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaseInput(lat, long float64) models.NewCase {
	return models.NewCase{
		UserID:   "user_2uVbYz9XrjAcTXemheEckOgckTo",
		Lat:      utils.Float64Ptr(lat),
		Long:     utils.Float64Ptr(long),
		Location: "Shivajinagar, Pune",
	}
}

func TestMemoryCaseStoreCreateAssignsServerFields(t *testing.T) {
	store := NewMemoryCaseStore()
	before := time.Now().UnixMilli()

	created, err := store.Create(context.Background(), newCaseInput(18.5308, 73.8475))
	require.NoError(t, err)

	after := time.Now().UnixMilli()
	assert.NotEmpty(t, created.EmergencyID)
	assert.Equal(t, models.CaseStatusPending, created.Status)
	assert.Equal(t, models.DefaultCause, created.Cause)
	assert.GreaterOrEqual(t, created.Date, before)
	assert.LessOrEqual(t, created.Date, after)

	fetched, err := store.GetByID(context.Background(), created.EmergencyID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestMemoryCaseStoreRejectsMismatchedCoordinates(t *testing.T) {
	store := NewMemoryCaseStore()
	input := newCaseInput(18.5, 73.8)
	input.Long = nil

	_, err := store.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryCaseStoreRejectsOutOfRangeCoordinates(t *testing.T) {
	store := NewMemoryCaseStore()

	_, err := store.Create(context.Background(), newCaseInput(91, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInvalidCoordinates))
}

func TestMemoryCaseStoreConcurrentCreatesGetDistinctIDs(t *testing.T) {
	store := NewMemoryCaseStore()
	const writers = 50

	var wg sync.WaitGroup
	ids := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := store.Create(context.Background(), newCaseInput(18.5, 73.8))
			if assert.NoError(t, err) {
				ids <- created.EmergencyID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, writers)
}

func TestMemoryCaseStoreGetAllNewestFirst(t *testing.T) {
	store := NewMemoryCaseStore()
	clock := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	var created []string
	for i := 0; i < 3; i++ {
		c, err := store.Create(context.Background(), newCaseInput(18.5, 73.8))
		require.NoError(t, err)
		created = append(created, c.EmergencyID)
	}

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, created[2], all[0].EmergencyID)
	assert.Equal(t, created[0], all[2].EmergencyID)
}

func TestMemoryCaseStoreTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCaseStore()

	c, err := store.Create(ctx, newCaseInput(18.5, 73.8))
	require.NoError(t, err)

	updated, prev, err := store.UpdateStatus(ctx, c.EmergencyID, models.CaseStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusPending, prev)
	assert.Equal(t, models.CaseStatusResolved, updated.Status)
	assert.NotZero(t, updated.UpdatedAt)

	_, _, err = store.UpdateStatus(ctx, c.EmergencyID, models.CaseStatusPending)
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))

	stored, err := store.GetByID(ctx, c.EmergencyID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusResolved, stored.Status)
}

func TestMemoryCaseStoreCancel(t *testing.T) {
	ctx := context.Background()

	for _, from := range []string{models.CaseStatusPending, models.CaseStatusAcknowledged} {
		store := NewMemoryCaseStore()
		c, err := store.Create(ctx, newCaseInput(18.5, 73.8))
		require.NoError(t, err)
		if from == models.CaseStatusAcknowledged {
			_, _, err = store.UpdateStatus(ctx, c.EmergencyID, from)
			require.NoError(t, err)
		}
		_, _, err = store.UpdateStatus(ctx, c.EmergencyID, models.CaseStatusCancelled)
		assert.NoError(t, err, "cancel from %s", from)
	}

	for _, from := range []string{models.CaseStatusResolved, models.CaseStatusCancelled} {
		store := NewMemoryCaseStore()
		c, err := store.Create(ctx, newCaseInput(18.5, 73.8))
		require.NoError(t, err)
		_, _, err = store.UpdateStatus(ctx, c.EmergencyID, from)
		require.NoError(t, err)

		_, _, err = store.UpdateStatus(ctx, c.EmergencyID, models.CaseStatusCancelled)
		assert.True(t, errors.Is(err, utils.ErrInvalidTransition), "cancel from %s", from)
	}
}

func TestMemoryCaseStoreConcurrentTransitionsApplyOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCaseStore()
	c, err := store.Create(ctx, newCaseInput(18.5, 73.8))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := store.UpdateStatus(ctx, c.EmergencyID, models.CaseStatusAcknowledged); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestMemoryCaseStoreUnknownCase(t *testing.T) {
	store := NewMemoryCaseStore()

	_, err := store.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, utils.ErrCaseNotFound))

	_, _, err = store.UpdateStatus(context.Background(), "missing", models.CaseStatusAcknowledged)
	assert.True(t, errors.Is(err, utils.ErrCaseNotFound))

	_, err = store.UpdatePriority(context.Background(), "missing", models.PriorityLow)
	assert.True(t, errors.Is(err, utils.ErrCaseNotFound))
}

func TestMemoryCaseStoreListPendingBefore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCaseStore()
	base := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time { return base }

	old, err := store.Create(ctx, newCaseInput(18.5, 73.8))
	require.NoError(t, err)
	acked, err := store.Create(ctx, newCaseInput(18.5, 73.8))
	require.NoError(t, err)
	_, _, err = store.UpdateStatus(ctx, acked.EmergencyID, models.CaseStatusAcknowledged)
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(10 * time.Minute) }
	_, err = store.Create(ctx, newCaseInput(18.5, 73.8))
	require.NoError(t, err)

	stale, err := store.ListPendingBefore(ctx, base.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.EmergencyID, stale[0].EmergencyID)
}

func TestMemoryProfileStoreUpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProfileStore()

	_, err := store.GetByUserID(ctx, "u1")
	assert.True(t, errors.Is(err, utils.ErrProfileNotFound))

	first, err := store.Upsert(ctx, &models.UserProfile{UserID: "u1", Username: "asha"})
	require.NoError(t, err)

	second, err := store.Upsert(ctx, &models.UserProfile{
		UserID:            "u1",
		Username:          "asha k",
		EmergencyContacts: []models.EmergencyContact{{Name: "Ravi", Number: "9876543210"}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := store.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "asha k", got.Username)
	assert.Len(t, got.EmergencyContacts, 1)
}
