package services

import (
	"context"
	"lifeline/models"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCase() *models.EmergencyCase {
	return &models.EmergencyCase{
		EmergencyID: "c0ffee00-0000-4000-8000-000000000001",
		UserID:      "user_2uVbYz9XrjAcTXemheEckOgckTo",
		Lat:         18.5308,
		Long:        73.8475,
		Location:    "Shivajinagar, Pune",
		Cause:       models.DefaultCause,
		Priority:    models.PriorityHigh,
		Status:      models.CaseStatusPending,
		Date:        time.Now().UnixMilli(),
	}
}

func TestNotifyContinuesPastFailingContact(t *testing.T) {
	sender := newFakeSMSSender()
	sender.failures["+919800000002"] = -1
	events := &recordingPublisher{}
	dispatcher := NewNotificationDispatcher(sender, events, "91", 3, time.Millisecond)

	contacts := []models.EmergencyContact{
		{Name: "Asha", Number: "9800000001"},
		{Name: "Ravi", Number: "9800000002"},
		{Name: "Meera", Number: "+91 98000 00003"},
	}

	result := dispatcher.Notify(context.Background(), testCase(), contacts)

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, "Asha", result.Results[0].Name)
	assert.Equal(t, "SM+919800000001", result.Results[0].MessageID)
	assert.Equal(t, 1, result.Results[0].Attempts)

	assert.False(t, result.Results[1].Success)
	assert.Equal(t, 3, result.Results[1].Attempts)
	assert.NotEmpty(t, result.Results[1].Error)

	assert.True(t, result.Results[2].Success)

	stats := result.Stats()
	assert.Equal(t, models.DispatchStats{Attempted: 3, Delivered: 2, Failed: 1}, stats)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	published := events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, models.EventEmergencyCreated, published[0].Type)
	assert.Equal(t, "c0ffee00-0000-4000-8000-000000000001", published[0].Case.EmergencyID)
}

func TestNotifyRetriesTransientFailure(t *testing.T) {
	sender := newFakeSMSSender()
	sender.failures["+919800000001"] = 1
	dispatcher := NewNotificationDispatcher(sender, nil, "91", 3, time.Millisecond)

	result := dispatcher.Notify(context.Background(), testCase(), []models.EmergencyContact{
		{Name: "Asha", Number: "9800000001"},
	})

	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, 2, result.Results[0].Attempts)
}

func TestNotifyRejectsUnusableNumberWithoutSending(t *testing.T) {
	sender := newFakeSMSSender()
	dispatcher := NewNotificationDispatcher(sender, nil, "91", 3, time.Millisecond)

	result := dispatcher.Notify(context.Background(), testCase(), []models.EmergencyContact{
		{Name: "Nobody", Number: "12"},
	})

	require.Len(t, result.Results, 1)
	assert.False(t, result.Results[0].Success)
	assert.Equal(t, 0, result.Results[0].Attempts)
	assert.Equal(t, 0, sender.calls)
}

func TestNotifyForUsesReporterName(t *testing.T) {
	sender := newFakeSMSSender()
	dispatcher := NewNotificationDispatcher(sender, nil, "91", 1, time.Millisecond)

	profile := &models.UserProfile{
		UserID:            "user_1",
		Username:          "Priya",
		EmergencyContacts: []models.EmergencyContact{{Name: "Asha", Number: "9800000001"}},
	}
	dispatcher.NotifyFor(context.Background(), testCase(), profile)

	require.Len(t, sender.sent["+919800000001"], 1)
	assert.Equal(t,
		"EMERGENCY ALERT: Priya needs help at Shivajinagar, Pune. Help is on the way.",
		sender.sent["+919800000001"][0])
}

func TestNotifyForWithoutProfileStillAnnouncesCase(t *testing.T) {
	events := &recordingPublisher{}
	dispatcher := NewNotificationDispatcher(newFakeSMSSender(), events, "91", 1, time.Millisecond)

	result := dispatcher.NotifyFor(context.Background(), testCase(), nil)

	assert.Empty(t, result.Results)
	assert.Len(t, events.Events(), 1)
}

func TestAlertMessageDefaultsName(t *testing.T) {
	assert.Equal(t,
		"EMERGENCY ALERT: A contact needs help at Lat: 1, Lng: 2. Help is on the way.",
		AlertMessage("  ", "Lat: 1, Lng: 2"))
}

func TestNotifyDoesNotRetryUnconfiguredGateway(t *testing.T) {
	dispatcher := NewNotificationDispatcher(DisabledSMSSender{}, nil, "91", 5, time.Millisecond)

	result := dispatcher.Notify(context.Background(), testCase(), []models.EmergencyContact{
		{Name: "Asha", Number: "9800000001"},
		{Name: "Ravi", Number: "9800000002"},
	})

	require.Len(t, result.Results, 2)
	for _, res := range result.Results {
		assert.False(t, res.Success)
		assert.Equal(t, 1, res.Attempts)
		assert.Contains(t, res.Error, "not configured")
	}
}

func TestAlertMessageTruncatesLongFields(t *testing.T) {
	location := strings.Repeat("Near the old banyan tree, ", 20)
	message := AlertMessage(strings.Repeat("पुणे", 30), location)

	assert.Contains(t, message, strings.Repeat("पुणे", 15)+"...")
	assert.NotContains(t, message, location)
	assert.Contains(t, message, location[:maxAlertLocationLength]+"...")
}
