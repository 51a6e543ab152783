package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hospital struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Beds      HospitalBeds       `json:"beds" bson:"beds"`
	Services  []string           `json:"services" bson:"services"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// HospitalBeds counts currently vacant beds per ward.
type HospitalBeds struct {
	Emergency int `json:"emergency" bson:"emergency"`
	ICU       int `json:"icu" bson:"icu"`
	General   int `json:"general" bson:"general"`
}
