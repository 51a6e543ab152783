package services

import (
	"context"
	"errors"
	"fmt"
	"lifeline/models"
	"lifeline/utils"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

var errInvalidNumber = errors.New("invalid phone number")

// NotificationDispatcher alerts a reporter's emergency contacts and tells the
// triage dashboards about the new case.
type NotificationDispatcher struct {
	sender        SMSSender
	events        CaseEventPublisher
	countryCode   string
	retryAttempts int
	retryDelay    time.Duration
}

func NewNotificationDispatcher(sender SMSSender, events CaseEventPublisher, countryCode string, retryAttempts int, retryDelay time.Duration) *NotificationDispatcher {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &NotificationDispatcher{
		sender:        sender,
		events:        events,
		countryCode:   countryCode,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
	}
}

// Notify sends the alert to every contact in parallel. One contact failing
// never stops the others; the result carries one entry per contact, in order.
func (nd *NotificationDispatcher) Notify(ctx context.Context, c *models.EmergencyCase, contacts []models.EmergencyContact) models.DispatchResult {
	return nd.notify(ctx, c, "", contacts)
}

// NotifyFor dispatches to the contacts stored on the reporter's profile. A
// nil profile still announces the case to the dashboards.
func (nd *NotificationDispatcher) NotifyFor(ctx context.Context, c *models.EmergencyCase, profile *models.UserProfile) models.DispatchResult {
	if profile == nil {
		return nd.notify(ctx, c, "", nil)
	}
	return nd.notify(ctx, c, profile.Username, profile.EmergencyContacts)
}

func (nd *NotificationDispatcher) notify(ctx context.Context, c *models.EmergencyCase, reporter string, contacts []models.EmergencyContact) models.DispatchResult {
	result := models.DispatchResult{
		EmergencyID: c.EmergencyID,
		Results:     make([]models.ContactResult, len(contacts)),
		StartedAt:   time.Now(),
	}

	if nd.events != nil {
		event := models.CaseEvent{Type: models.EventEmergencyCreated, Case: *c, Timestamp: time.Now()}
		if err := nd.events.Publish(ctx, event); err != nil {
			logrus.WithField("emergencyId", c.EmergencyID).Warnf("Failed to publish %s: %v", event.Type, err)
		}
	}

	body := AlertMessage(reporter, c.Location)

	var wg sync.WaitGroup
	for i, contact := range contacts {
		wg.Add(1)
		go func(i int, contact models.EmergencyContact) {
			defer wg.Done()
			result.Results[i] = nd.sendToContact(ctx, contact, body)
		}(i, contact)
	}
	wg.Wait()

	result.FinishedAt = time.Now()

	stats := result.Stats()
	logrus.WithFields(logrus.Fields{
		"emergencyId": c.EmergencyID,
		"attempted":   stats.Attempted,
		"delivered":   stats.Delivered,
		"failed":      stats.Failed,
		"duration":    utils.FormatDuration(result.FinishedAt.Sub(result.StartedAt)),
	}).Info("Emergency contacts notified")

	return result
}

func (nd *NotificationDispatcher) sendToContact(ctx context.Context, contact models.EmergencyContact, body string) models.ContactResult {
	res := models.ContactResult{
		Name:   contact.Name,
		Number: contact.Number,
	}

	to := utils.NormalizePhoneNumber(contact.Number, nd.countryCode)
	if to == "" {
		res.Error = errInvalidNumber.Error()
		return res
	}

	var messageID string
	attempts, err := utils.RetryWithBackoff(ctx, nd.retryAttempts, nd.retryDelay, func(attempt int) error {
		id, sendErr := nd.sender.SendSMS(ctx, to, body)
		if sendErr != nil {
			logrus.WithFields(logrus.Fields{
				"to":      utils.MaskPhoneNumber(to),
				"attempt": attempt,
			}).Warnf("SMS delivery failed: %v", sendErr)
			if errors.Is(sendErr, utils.ErrNotConfigured) {
				return backoff.Permanent(sendErr)
			}
			return sendErr
		}
		messageID = id
		return nil
	})

	res.Attempts = attempts
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.MessageID = messageID
	return res
}

// Keep the alert within a few SMS segments.
const (
	maxAlertNameLength     = 60
	maxAlertLocationLength = 200
)

// AlertMessage renders the SMS sent to emergency contacts.
func AlertMessage(reporter, location string) string {
	name := strings.TrimSpace(reporter)
	if name == "" {
		name = "A contact"
	}
	return fmt.Sprintf("EMERGENCY ALERT: %s needs help at %s. Help is on the way.",
		utils.TruncateString(name, maxAlertNameLength), utils.TruncateString(location, maxAlertLocationLength))
}
