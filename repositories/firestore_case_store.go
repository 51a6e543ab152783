package repositories

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreCaseStore keeps cases in the "emergencies" collection, one
// document per case with the emergencyId as document id.
type FirestoreCaseStore struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewFirestoreCaseStore(client *firestore.Client) *FirestoreCaseStore {
	return &FirestoreCaseStore{
		client:     client,
		collection: client.Collection("emergencies"),
	}
}

func (fs *FirestoreCaseStore) Create(ctx context.Context, input models.NewCase) (*models.EmergencyCase, error) {
	record, err := newCaseRecord(input, time.Now())
	if err != nil {
		return nil, err
	}

	// Create fails if the document exists, which makes id assignment
	// collision-safe without a read.
	for attempt := 0; attempt < 2; attempt++ {
		_, err = fs.collection.Doc(record.EmergencyID).Create(ctx, record)
		if err == nil {
			return record, nil
		}
		if status.Code(err) != codes.AlreadyExists {
			break
		}
		record.EmergencyID = utils.GenerateUUID()
	}

	logrus.Errorf("Failed to create emergency in Firestore: %v", err)
	return nil, utils.NewPersistenceError("create emergency", err)
}

func (fs *FirestoreCaseStore) GetByID(ctx context.Context, emergencyID string) (*models.EmergencyCase, error) {
	snap, err := fs.collection.Doc(emergencyID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, utils.NewCaseNotFoundError(emergencyID)
		}
		return nil, utils.NewPersistenceError("get emergency", err)
	}
	return decodeCase(snap)
}

func (fs *FirestoreCaseStore) GetAll(ctx context.Context) ([]models.EmergencyCase, error) {
	return fs.collect(ctx, fs.collection.OrderBy("date", firestore.Desc).Documents(ctx), nil)
}

// ListPendingBefore filters on status in Firestore and on date in process,
// which avoids a composite index.
func (fs *FirestoreCaseStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.EmergencyCase, error) {
	limit := cutoff.UnixMilli()
	iter := fs.collection.Where("status", "==", models.CaseStatusPending).Documents(ctx)
	cases, err := fs.collect(ctx, iter, func(c *models.EmergencyCase) bool { return c.Date <= limit })
	if err != nil {
		return nil, err
	}
	sortNewestFirst(cases)
	return cases, nil
}

func (fs *FirestoreCaseStore) collect(ctx context.Context, iter *firestore.DocumentIterator, keep func(*models.EmergencyCase) bool) ([]models.EmergencyCase, error) {
	defer iter.Stop()

	cases := []models.EmergencyCase{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, utils.NewPersistenceError("list emergencies", err)
		}
		record, err := decodeCase(snap)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(record) {
			cases = append(cases, *record)
		}
	}
	return cases, nil
}

// UpdateStatus reads and writes inside one transaction; Firestore retries the
// function on contention so the check always sees the committed status.
func (fs *FirestoreCaseStore) UpdateStatus(ctx context.Context, emergencyID, newStatus string) (*models.EmergencyCase, string, error) {
	var updated *models.EmergencyCase
	var prev string

	ref := fs.collection.Doc(emergencyID)
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return utils.NewCaseNotFoundError(emergencyID)
			}
			return err
		}
		current, err := decodeCase(snap)
		if err != nil {
			return err
		}
		if err := checkTransition(current, newStatus); err != nil {
			return err
		}

		now := time.Now().UnixMilli()
		if err := tx.Update(ref, []firestore.Update{
			{Path: "status", Value: newStatus},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}

		prev = current.Status
		current.Status = newStatus
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return nil, "", wrapFirestoreError("update emergency status", err)
	}
	return updated, prev, nil
}

func (fs *FirestoreCaseStore) UpdatePriority(ctx context.Context, emergencyID, priority string) (*models.EmergencyCase, error) {
	if err := checkPriority(priority); err != nil {
		return nil, err
	}

	var updated *models.EmergencyCase
	ref := fs.collection.Doc(emergencyID)
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return utils.NewCaseNotFoundError(emergencyID)
			}
			return err
		}
		current, err := decodeCase(snap)
		if err != nil {
			return err
		}

		now := time.Now().UnixMilli()
		if err := tx.Update(ref, []firestore.Update{
			{Path: "priority", Value: priority},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}

		current.Priority = priority
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return nil, wrapFirestoreError("update emergency priority", err)
	}
	return updated, nil
}

func (fs *FirestoreCaseStore) Count(ctx context.Context) (int64, error) {
	result, err := fs.collection.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, utils.NewPersistenceError("count emergencies", err)
	}
	value, ok := result["all"].(*firestorepb.Value)
	if !ok {
		return 0, utils.NewPersistenceError("count emergencies", errors.New("unexpected aggregation result"))
	}
	return value.GetIntegerValue(), nil
}

func decodeCase(snap *firestore.DocumentSnapshot) (*models.EmergencyCase, error) {
	var record models.EmergencyCase
	if err := snap.DataTo(&record); err != nil {
		return nil, utils.NewPersistenceError("decode emergency", err)
	}
	if record.EmergencyID == "" {
		record.EmergencyID = snap.Ref.ID
	}
	return &record, nil
}

// wrapFirestoreError passes domain errors raised inside a transaction through
// untouched and wraps everything else as a persistence failure.
func wrapFirestoreError(operation string, err error) error {
	if _, ok := utils.GetServiceError(err); ok {
		return err
	}
	logrus.Errorf("Firestore %s failed: %v", operation, err)
	return utils.NewPersistenceError(operation, err)
}
