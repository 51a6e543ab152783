package repositories

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository is the MongoDB profile store.
type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("profiles"),
	}
}

func (pr *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := pr.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewProfileNotFoundError(userID)
		}
		logrus.Errorf("Failed to get profile: %v", err)
		return nil, utils.NewPersistenceError("get profile", err)
	}
	return &profile, nil
}

func (pr *ProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		return nil, utils.NewValidationError("userId is required")
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"userId":            profile.UserID,
			"email":             profile.Email,
			"username":          profile.Username,
			"phone":             profile.Phone,
			"bloodGroup":        profile.BloodGroup,
			"diseases":          profile.Diseases,
			"emergencyContacts": profile.EmergencyContacts,
			"aadharDetails":     profile.AadharDetails,
			"age":               profile.Age,
			"isVolunteer":       profile.IsVolunteer,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.UserProfile
	err := pr.collection.FindOneAndUpdate(ctx, bson.M{"userId": profile.UserID}, update, opts).Decode(&stored)
	if err != nil {
		logrus.Errorf("Failed to upsert profile: %v", err)
		return nil, utils.NewPersistenceError("upsert profile", err)
	}
	return &stored, nil
}
