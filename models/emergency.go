package models

import (
	"fmt"
	"time"
)

// EmergencyCase is one SOS record, the unit of triage.
type EmergencyCase struct {
	EmergencyID   string  `json:"emergencyId" bson:"emergencyId" firestore:"emergencyId"`
	UserID        string  `json:"userId" bson:"userId" firestore:"userId"`
	Lat           float64 `json:"lat" bson:"lat" firestore:"lat"`
	Long          float64 `json:"long" bson:"long" firestore:"long"`
	Location      string  `json:"location" bson:"location" firestore:"location"`
	Cause         string  `json:"cause" bson:"cause" firestore:"cause"`
	Priority      string  `json:"priority" bson:"priority" firestore:"priority"`
	Status        string  `json:"status" bson:"status" firestore:"status"`
	Date          int64   `json:"date" bson:"date" firestore:"date"`
	UpdatedAt     int64   `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
	HeartRate     *int    `json:"heartRate,omitempty" bson:"heartRate,omitempty" firestore:"heartRate,omitempty"`
	BloodPressure string  `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty" firestore:"bloodPressure,omitempty"`
	Spo2          *int    `json:"Spo2,omitempty" bson:"Spo2,omitempty" firestore:"Spo2,omitempty"`
}

// Vitals is the optional wearable block attached to a case.
type Vitals struct {
	HeartRate     *int   `json:"heartRate,omitempty"`
	BloodPressure string `json:"bloodPressure,omitempty"`
	Spo2          *int   `json:"Spo2,omitempty"`
}

func (ec *EmergencyCase) Vitals() Vitals {
	return Vitals{
		HeartRate:     ec.HeartRate,
		BloodPressure: ec.BloodPressure,
		Spo2:          ec.Spo2,
	}
}

// CreatedAt converts the epoch-millisecond date to a time.
func (ec *EmergencyCase) CreatedAt() time.Time {
	return time.UnixMilli(ec.Date)
}

// IsTerminal reports whether the case can no longer change status.
func (ec *EmergencyCase) IsTerminal() bool {
	return IsTerminalStatus(ec.Status)
}

// NewCase holds what the store needs to create a case. Identifier, date and
// status are assigned by the store.
type NewCase struct {
	UserID   string
	Lat      *float64
	Long     *float64
	Location string
	Cause    string
	Priority string
	Vitals   Vitals
}

// Case status values
const (
	CaseStatusPending      = "pending"
	CaseStatusAcknowledged = "acknowledged"
	CaseStatusResolved     = "resolved"
	CaseStatusCancelled    = "cancelled"
)

// Case priority values
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// DefaultCause labels an SOS that arrived without a category.
const DefaultCause = "SOS"

var statusRank = map[string]int{
	CaseStatusPending:      0,
	CaseStatusAcknowledged: 1,
	CaseStatusResolved:     2,
}

// IsValidStatus reports whether s is a known case status.
func IsValidStatus(s string) bool {
	switch s {
	case CaseStatusPending, CaseStatusAcknowledged, CaseStatusResolved, CaseStatusCancelled:
		return true
	}
	return false
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func IsTerminalStatus(s string) bool {
	return s == CaseStatusResolved || s == CaseStatusCancelled
}

// CanTransition checks the forward-only lifecycle:
// pending -> acknowledged -> resolved, and cancelled from any non-terminal state.
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) || !IsValidStatus(to) {
		return false
	}
	if to == CaseStatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	return statusRank[to] > fromRank
}

// AllowedSources lists every status from which a case may move to target.
// Stores use it to build conditional updates. The result is never nil.
func AllowedSources(target string) []string {
	sources := []string{}
	for _, s := range []string{CaseStatusPending, CaseStatusAcknowledged, CaseStatusResolved, CaseStatusCancelled} {
		if CanTransition(s, target) {
			sources = append(sources, s)
		}
	}
	return sources
}

// FallbackLocation is the coordinate string used when an address cannot be resolved.
func FallbackLocation(lat, long float64) string {
	return fmt.Sprintf("Lat: %v, Lng: %v", lat, long)
}

// Request models

type CreateSOSRequest struct {
	UserID        string   `json:"userId" validate:"required"`
	Lat           *float64 `json:"lat"`
	Long          *float64 `json:"long"`
	Location      string   `json:"location,omitempty"`
	Cause         string   `json:"cause,omitempty" validate:"omitempty,max=200"`
	HeartRate     *int     `json:"heartRate,omitempty" validate:"omitempty,min=0,max=300"`
	BloodPressure string   `json:"bloodPressure,omitempty" validate:"omitempty,max=20"`
	Spo2          *int     `json:"Spo2,omitempty" validate:"omitempty,min=0,max=100"`
}

type UpdateCaseStatusRequest struct {
	Status string `json:"status" validate:"required,case_status"`
}

type UpdateCasePriorityRequest struct {
	Priority string `json:"priority" validate:"required,case_priority"`
}

// EmergencyDetail is the triage drill-down: the case joined with the reporter's profile.
type EmergencyDetail struct {
	EmergencyCase
	User *UserProfile `json:"user,omitempty"`
}
