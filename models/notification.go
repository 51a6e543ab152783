package models

import "time"

// ContactResult is the delivery outcome for one emergency contact.
type ContactResult struct {
	Name      string `json:"name"`
	Number    string `json:"number"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

// DispatchResult collects per-contact outcomes for one case. Order matches
// the profile's contact order.
type DispatchResult struct {
	EmergencyID string          `json:"emergencyId"`
	Results     []ContactResult `json:"results"`
	StartedAt   time.Time       `json:"startedAt"`
	FinishedAt  time.Time       `json:"finishedAt"`
}

// DispatchStats summarises a notification fan-out.
type DispatchStats struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

func (d DispatchResult) Stats() DispatchStats {
	stats := DispatchStats{Attempted: len(d.Results)}
	for _, r := range d.Results {
		if r.Success {
			stats.Delivered++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// PushNotification is a topic push sent alongside triage events.
type PushNotification struct {
	Topic    string            `json:"topic"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority"`
}
