package services

import (
	"context"
	"lifeline/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
)

// PushService sends FCM topic messages to the responder apps.
type PushService struct {
	fcmClient *messaging.Client
	topic     string
}

func NewPushService(fcmClient *messaging.Client, topic string) *PushService {
	return &PushService{
		fcmClient: fcmClient,
		topic:     topic,
	}
}

func (ps *PushService) Enabled() bool {
	return ps != nil && ps.fcmClient != nil
}

func (ps *PushService) SendTopic(ctx context.Context, notification models.PushNotification) (string, error) {
	topic := notification.Topic
	if topic == "" {
		topic = ps.topic
	}

	androidPriority := "normal"
	if notification.Priority == models.PriorityCritical || notification.Priority == models.PriorityHigh {
		androidPriority = "high"
	}

	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Color: "#D32F2F",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: notification.Title,
						Body:  notification.Body,
					},
					Sound: "default",
				},
			},
		},
	}

	id, err := ps.fcmClient.Send(ctx, message)
	if err != nil {
		logrus.Errorf("Failed to send push to topic %s: %v", topic, err)
		return "", err
	}
	return id, nil
}

// CaseNotification builds the push sent to responders for a case event.
func CaseNotification(event models.CaseEvent) models.PushNotification {
	c := event.Case
	title := "New SOS: " + c.Cause
	if event.Type == models.EventEmergencyStale {
		title = "Unacknowledged SOS: " + c.Cause
	}

	return models.PushNotification{
		Title:    title,
		Body:     c.Priority + " priority at " + c.Location,
		Priority: c.Priority,
		Data: map[string]string{
			"type":        event.Type,
			"emergencyId": c.EmergencyID,
			"priority":    c.Priority,
			"status":      c.Status,
		},
	}
}
