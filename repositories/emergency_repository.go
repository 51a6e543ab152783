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

// EmergencyRepository is the MongoDB case store.
type EmergencyRepository struct {
	emergencyCollection *mongo.Collection
}

func NewEmergencyRepository(database *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{
		emergencyCollection: database.Collection("emergencies"),
	}
}

func (er *EmergencyRepository) Create(ctx context.Context, input models.NewCase) (*models.EmergencyCase, error) {
	record, err := newCaseRecord(input, time.Now())
	if err != nil {
		return nil, err
	}

	// The unique index on emergencyId turns a uuid collision into a
	// duplicate key error; retry once with a fresh id.
	for attempt := 0; attempt < 2; attempt++ {
		_, err = er.emergencyCollection.InsertOne(ctx, record)
		if err == nil {
			return record, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
		record.EmergencyID = utils.GenerateUUID()
	}

	logrus.Errorf("Failed to create emergency: %v", err)
	return nil, utils.NewPersistenceError("create emergency", err)
}

func (er *EmergencyRepository) GetByID(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	var record models.EmergencyCase
	err := er.emergencyCollection.FindOne(ctx, bson.M{"emergencyId": emergencyID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewCaseNotFoundError(emergencyID)
		}
		logrus.Errorf("Failed to get emergency by ID: %v", err)
		return nil, utils.NewPersistenceError("get emergency", err)
	}

	return &record, nil
}

func (er *EmergencyRepository) GetAll(ctx context.Context) ([]models.EmergencyCase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "emergencyId", Value: 1}})
	return er.find(ctx, bson.M{}, opts)
}

func (er *EmergencyRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.EmergencyCase, error) {
	filter := bson.M{
		"status": models.CaseStatusPending,
		"date":   bson.M{"$lte": cutoff.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return er.find(ctx, filter, opts)
}

func (er *EmergencyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.EmergencyCase, error) {
	cursor, err := er.emergencyCollection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to list emergencies: %v", err)
		return nil, utils.NewPersistenceError("list emergencies", err)
	}
	defer cursor.Close(ctx)

	cases := []models.EmergencyCase{}
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, utils.NewPersistenceError("decode emergencies", err)
	}
	return cases, nil
}

// UpdateStatus applies the transition with a single conditional update so
// concurrent transitions on the same case cannot both succeed.
func (er *EmergencyRepository) UpdateStatus(ctx context.Context, emergencyID, status string) (*models.EmergencyCase, string, error) {
	if !models.IsValidStatus(status) {
		return nil, "", utils.NewValidationError("unknown status " + status)
	}

	filter, ok := transitionFilter(emergencyID, status)
	if !ok {
		// No status leads to the target; report why without touching the record.
		current, err := er.GetByID(ctx, emergencyID)
		if err != nil {
			return nil, "", err
		}
		return nil, "", utils.NewInvalidTransitionError(current.Status, status)
	}

	now := time.Now().UnixMilli()
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.EmergencyCase
	err := er.emergencyCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == nil {
		after := before
		after.Status = status
		after.UpdatedAt = now
		return &after, before.Status, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logrus.Errorf("Failed to update emergency status: %v", err)
		return nil, "", utils.NewPersistenceError("update emergency status", err)
	}

	// Nothing matched: either the case is missing or its status forbids the move.
	current, getErr := er.GetByID(ctx, emergencyID)
	if getErr != nil {
		return nil, "", getErr
	}
	return nil, "", utils.NewInvalidTransitionError(current.Status, status)
}

// transitionFilter matches the case only while its status may move to target.
// It reports false when no status can, since an empty $in never matches.
func transitionFilter(emergencyID, target string) (bson.M, bool) {
	sources := models.AllowedSources(target)
	if len(sources) == 0 {
		return nil, false
	}
	return bson.M{
		"emergencyId": emergencyID,
		"status":      bson.M{"$in": sources},
	}, true
}

func (er *EmergencyRepository) UpdatePriority(ctx context.Context, emergencyID, priority string) (*models.EmergencyCase, error) {
	if err := checkPriority(priority); err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"priority": priority, "updatedAt": time.Now().UnixMilli()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record models.EmergencyCase
	err := er.emergencyCollection.FindOneAndUpdate(ctx, bson.M{"emergencyId": emergencyID}, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewCaseNotFoundError(emergencyID)
		}
		logrus.Errorf("Failed to update emergency priority: %v", err)
		return nil, utils.NewPersistenceError("update emergency priority", err)
	}
	return &record, nil
}

func (er *EmergencyRepository) Count(ctx context.Context) (int64, error) {
	count, err := er.emergencyCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, utils.NewPersistenceError("count emergencies", err)
	}
	return count, nil
}
