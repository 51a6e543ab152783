package repositories

import (
	"context"
	"lifeline/models"
	"lifeline/utils"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreProfileStore reads the "users" collection the web client writes,
// keyed by Clerk user id.
type FirestoreProfileStore struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewFirestoreProfileStore(client *firestore.Client) *FirestoreProfileStore {
	return &FirestoreProfileStore{
		client:     client,
		collection: client.Collection("users"),
	}
}

func (fs *FirestoreProfileStore) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	snap, err := fs.collection.Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, utils.NewProfileNotFoundError(userID)
		}
		return nil, utils.NewPersistenceError("get profile", err)
	}

	var profile models.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, utils.NewPersistenceError("decode profile", err)
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}
	return &profile, nil
}

func (fs *FirestoreProfileStore) Upsert(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.UserID == "" {
		return nil, utils.NewValidationError("userId is required")
	}

	ref := fs.collection.Doc(profile.UserID)
	stored := *profile
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		stored.UpdatedAt = now
		stored.CreatedAt = now

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing models.UserProfile
			if err := snap.DataTo(&existing); err == nil && !existing.CreatedAt.IsZero() {
				stored.CreatedAt = existing.CreatedAt
			}
		case status.Code(err) != codes.NotFound:
			return err
		}
		return tx.Set(ref, stored)
	})
	if err != nil {
		return nil, wrapFirestoreError("upsert profile", err)
	}
	return &stored, nil
}
