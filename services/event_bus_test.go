package services

import (
	"context"
	"lifeline/models"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseEventBusDeliversLocallyWithoutRedis(t *testing.T) {
	bus := NewCaseEventBus(nil, nil)
	sink := newRecordingSink()
	bus.AddSink(sink)

	err := bus.Publish(context.Background(), models.CaseEvent{
		Type: models.EventEmergencyCreated,
		Case: *testCase(),
	})
	require.NoError(t, err)

	select {
	case event := <-sink.ch:
		assert.Equal(t, models.EventEmergencyCreated, event.Type)
		assert.False(t, event.Timestamp.IsZero())
	default:
		t.Fatal("event was not delivered")
	}
}

func TestCaseEventBusRelaysThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// Two buses on one Redis behave like two API instances.
	publisher := NewCaseEventBus(client, nil)
	subscriber := NewCaseEventBus(client, nil)
	sink := newRecordingSink()
	subscriber.AddSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go subscriber.Run(ctx)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(EventsChannel)[EventsChannel] > 0
	}, 2*time.Second, 10*time.Millisecond)

	c := testCase()
	c.Status = models.CaseStatusAcknowledged
	err := publisher.Publish(context.Background(), models.CaseEvent{
		Type:       models.EventEmergencyUpdated,
		Case:       *c,
		PrevStatus: models.CaseStatusPending,
	})
	require.NoError(t, err)

	select {
	case event := <-sink.ch:
		assert.Equal(t, models.EventEmergencyUpdated, event.Type)
		assert.Equal(t, c.EmergencyID, event.Case.EmergencyID)
		assert.Equal(t, models.CaseStatusPending, event.PrevStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}
}

func TestCaseNotificationTitles(t *testing.T) {
	c := testCase()
	c.Cause = "Cardiac arrest"

	created := CaseNotification(models.CaseEvent{Type: models.EventEmergencyCreated, Case: *c})
	assert.Equal(t, "New SOS: Cardiac arrest", created.Title)
	assert.Equal(t, c.EmergencyID, created.Data["emergencyId"])

	stale := CaseNotification(models.CaseEvent{Type: models.EventEmergencyStale, Case: *c})
	assert.Equal(t, "Unacknowledged SOS: Cardiac arrest", stale.Title)
}
