package models

import "time"

// UserProfile is the reporter's medical profile. The lifecycle core only reads it.
type UserProfile struct {
	UserID            string             `json:"userId" bson:"userId" firestore:"userId"`
	Email             string             `json:"email,omitempty" bson:"email,omitempty" firestore:"email,omitempty"`
	Username          string             `json:"username,omitempty" bson:"username,omitempty" firestore:"username,omitempty"`
	Phone             string             `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone,omitempty"`
	BloodGroup        string             `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty" firestore:"bloodGroup,omitempty"`
	Diseases          []string           `json:"diseases,omitempty" bson:"diseases,omitempty" firestore:"diseases,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts" bson:"emergencyContacts" firestore:"emergencyContacts"`
	AadharDetails     string             `json:"aadharDetails,omitempty" bson:"aadharDetails,omitempty" firestore:"aadharDetails,omitempty"`
	Age               int                `json:"age,omitempty" bson:"age,omitempty" firestore:"age,omitempty"`
	IsVolunteer       bool               `json:"isVolunteer" bson:"isVolunteer" firestore:"isVolunteer"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

// EmergencyContact is a fan-out target for SOS text alerts.
type EmergencyContact struct {
	Name   string `json:"name" bson:"name" firestore:"name" validate:"required,max=100"`
	Number string `json:"number" bson:"number" firestore:"number" validate:"required,phone"`
}

type UpsertProfileRequest struct {
	// The signup form posts clerkUserId; userId is accepted as well.
	ClerkUserID       string             `json:"clerkUserId"`
	UserID            string             `json:"userId"`
	Email             string             `json:"email" validate:"omitempty,email"`
	Username          string             `json:"username" validate:"max=100"`
	Phone             string             `json:"phone" validate:"omitempty,phone"`
	BloodGroup        string             `json:"bloodGroup" validate:"max=5"`
	Diseases          []string           `json:"diseases"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts" validate:"required,min=1,dive"`
	AadharDetails     string             `json:"aadharDetails"`
	Age               FlexInt            `json:"age"`
	IsVolunteer       bool               `json:"isVolunteer"`
}

// ResolvedUserID prefers the Clerk identifier used by the web client.
func (r UpsertProfileRequest) ResolvedUserID() string {
	if r.ClerkUserID != "" {
		return r.ClerkUserID
	}
	return r.UserID
}
