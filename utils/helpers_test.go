package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneNumber(t *testing.T) {
	cases := map[string]string{
		"9876543210":        "+919876543210",
		"+91 98765 43210":   "+919876543210",
		"09876543210":       "+919876543210",
		"0044 20 7946 0018": "+442079460018",
		"":                  "",
		"12":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhoneNumber(in, "91"), in)
	}
}

func TestRetryWithBackoffStopsOnSuccess(t *testing.T) {
	calls := 0
	attempts, err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func(int) error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoffExhausts(t *testing.T) {
	attempts, err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func(int) error {
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts, err := RetryWithBackoff(ctx, 5, time.Second, func(int) error {
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	attempts, err := RetryWithBackoff(context.Background(), 5, time.Millisecond, func(int) error {
		return backoff.Permanent(ErrNotConfigured)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoffKeepsLastErrorOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	down := errors.New("down")
	_, err := RetryWithBackoff(ctx, 3, time.Millisecond, func(int) error {
		return down
	})
	assert.True(t, errors.Is(err, down))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "Pun...", TruncateString("Pune, Maharashtra", 3))
	assert.Equal(t, "नमस...", TruncateString("नमस्ते", 3))
}

func TestNameSimilarity(t *testing.T) {
	assert.InDelta(t, 1-3.0/7.0, NameSimilarity("kitten", "sitting"), 0.0001)
	assert.InDelta(t, 1.0, NameSimilarity("AIIMS  Hospital", "aiims hospital"), 0.0001)

	idx, score := BestMatch("Apollo Hospital", []string{"City Clinic", "Apollo Hospitals", "Fortis"}, 0.7)
	assert.Equal(t, 1, idx)
	assert.Greater(t, score, 0.9)

	idx, _ = BestMatch("Sunrise Care", []string{"City Clinic", "Fortis"}, 0.7)
	assert.Equal(t, -1, idx)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(NewInvalidCoordinatesError(91, 0)))
	assert.Equal(t, 400, StatusFor(NewValidationError("bad")))
	assert.Equal(t, 404, StatusFor(NewCaseNotFoundError("x")))
	assert.Equal(t, 409, StatusFor(NewInvalidTransitionError("resolved", "pending")))
	assert.Equal(t, 500, StatusFor(NewPersistenceError("insert", errors.New("driver"))))
	assert.Equal(t, 503, StatusFor(NewNotConfiguredError("LLM")))
	assert.True(t, errors.Is(NewInvalidCoordinatesError(91, 0), ErrValidation))
	assert.True(t, errors.Is(NewPersistenceError("insert", errors.New("driver")), ErrPersistence))
}
