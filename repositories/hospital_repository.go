package repositories

import (
	"context"
	"errors"
	"lifeline/models"
	"lifeline/utils"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HospitalStore holds bed availability imported from the hospital sheet.
type HospitalStore interface {
	GetAll(ctx context.Context) ([]models.Hospital, error)
	GetByName(ctx context.Context, name string) (*models.Hospital, error)
	UpsertByName(ctx context.Context, hospital models.Hospital) error
}

type HospitalRepository struct {
	collection *mongo.Collection
}

func NewHospitalRepository(db *mongo.Database) *HospitalRepository {
	return &HospitalRepository{
		collection: db.Collection("hospitals"),
	}
}

func (hr *HospitalRepository) GetAll(ctx context.Context) ([]models.Hospital, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := hr.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logrus.Errorf("Failed to list hospitals: %v", err)
		return nil, utils.NewPersistenceError("list hospitals", err)
	}
	defer cursor.Close(ctx)

	hospitals := []models.Hospital{}
	if err := cursor.All(ctx, &hospitals); err != nil {
		return nil, utils.NewPersistenceError("decode hospitals", err)
	}
	return hospitals, nil
}

func (hr *HospitalRepository) GetByName(ctx context.Context, name string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := hr.collection.FindOne(ctx, bson.M{"name": name}).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewHospitalNotFoundError(name)
		}
		return nil, utils.NewPersistenceError("get hospital", err)
	}
	return &hospital, nil
}

func (hr *HospitalRepository) UpsertByName(ctx context.Context, hospital models.Hospital) error {
	update := bson.M{
		"$set": bson.M{
			"name":      hospital.Name,
			"beds":      hospital.Beds,
			"services":  hospital.Services,
			"updatedAt": time.Now(),
		},
	}
	_, err := hr.collection.UpdateOne(ctx, bson.M{"name": hospital.Name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return utils.NewPersistenceError("upsert hospital", err)
	}
	return nil
}

type MemoryHospitalStore struct {
	mu        sync.RWMutex
	hospitals map[string]models.Hospital
}

func NewMemoryHospitalStore() *MemoryHospitalStore {
	return &MemoryHospitalStore{hospitals: make(map[string]models.Hospital)}
}

func (s *MemoryHospitalStore) GetAll(ctx context.Context) ([]models.Hospital, error) {
	s.mu.RLock()
	out := make([]models.Hospital, 0, len(s.hospitals))
	for _, h := range s.hospitals {
		out = append(out, h)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryHospitalStore) GetByName(ctx context.Context, name string) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hospitals[name]
	if !ok {
		return nil, utils.NewHospitalNotFoundError(name)
	}
	return &h, nil
}

func (s *MemoryHospitalStore) UpsertByName(ctx context.Context, hospital models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hospital.UpdatedAt = time.Now()
	s.hospitals[hospital.Name] = hospital
	return nil
}
