package services

import (
	"context"
	"encoding/json"
	"lifeline/models"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// EventsChannel is the Redis pub/sub channel shared by every API instance.
const EventsChannel = "lifeline:emergency-events"

// CaseEventPublisher accepts case lifecycle events. Publishing is best effort.
type CaseEventPublisher interface {
	Publish(ctx context.Context, event models.CaseEvent) error
}

// CaseEventSink receives events for local delivery, e.g. the websocket hub.
type CaseEventSink interface {
	DeliverCaseEvent(event models.CaseEvent)
}

// CaseEventBus fans events out through Redis so all instances relay them to
// their own dashboards. Without Redis it delivers straight to local sinks.
type CaseEventBus struct {
	redis   *redis.Client
	channel string
	push    *PushService

	mu    sync.RWMutex
	sinks []CaseEventSink
}

func NewCaseEventBus(redisClient *redis.Client, push *PushService) *CaseEventBus {
	return &CaseEventBus{
		redis:   redisClient,
		channel: EventsChannel,
		push:    push,
	}
}

func (b *CaseEventBus) AddSink(sink CaseEventSink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, sink)
	b.mu.Unlock()
}

func (b *CaseEventBus) Publish(ctx context.Context, event models.CaseEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Push goes out once, from the publishing instance.
	b.sendPush(ctx, event)

	if b.redis == nil {
		b.deliver(event)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, b.channel, payload).Err(); err != nil {
		logrus.Warnf("Failed to publish %s over Redis, delivering locally: %v", event.Type, err)
		b.deliver(event)
		return err
	}
	return nil
}

// Run relays Redis messages to local sinks until ctx is done. It is a no-op
// without Redis.
func (b *CaseEventBus) Run(ctx context.Context) {
	if b.redis == nil {
		return
	}

	pubsub := b.redis.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		logrus.Errorf("Failed to subscribe to %s: %v", b.channel, err)
		return
	}
	logrus.Infof("📡 Subscribed to %s", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.CaseEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logrus.Warnf("Dropping malformed case event: %v", err)
				continue
			}
			b.deliver(event)
		}
	}
}

func (b *CaseEventBus) deliver(event models.CaseEvent) {
	b.mu.RLock()
	sinks := append([]CaseEventSink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, sink := range sinks {
		sink.DeliverCaseEvent(event)
	}
}

func (b *CaseEventBus) sendPush(ctx context.Context, event models.CaseEvent) {
	if !b.push.Enabled() {
		return
	}
	if event.Type != models.EventEmergencyCreated && event.Type != models.EventEmergencyStale {
		return
	}
	if _, err := b.push.SendTopic(ctx, CaseNotification(event)); err != nil {
		logrus.Warnf("Push for %s %s failed: %v", event.Type, event.Case.EmergencyID, err)
	}
}
