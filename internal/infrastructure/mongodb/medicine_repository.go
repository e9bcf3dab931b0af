package mongodb

import (
	"context"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	storage "github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MedicineRepository persists the medicine catalog
type MedicineRepository struct {
	collection *storage.InstrumentedCollection
}

// NewMedicineRepository creates a new medicine repository
func NewMedicineRepository(client *storage.InstrumentedClient) *MedicineRepository {
	repo := &MedicineRepository{
		collection: client.Collection("medicines"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *MedicineRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	r.collection.Raw().Indexes().CreateMany(ctx, indexes)
}

// Save upserts a medicine by id
func (r *MedicineRepository) Save(ctx context.Context, medicine *domain.Medicine) error {
	medicine.UpdatedAt = storage.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": medicine.ID}, medicine, opts)
	return err
}

// FindByID returns a medicine by id, nil when absent
func (r *MedicineRepository) FindByID(ctx context.Context, id string) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&medicine)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &medicine, nil
}

// FindByCode returns a medicine by its catalog code, nil when absent
func (r *MedicineRepository) FindByCode(ctx context.Context, code string) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&medicine)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &medicine, nil
}

// FindAll returns all medicines ordered by code
func (r *MedicineRepository) FindAll(ctx context.Context) ([]*domain.Medicine, error) {
	opts := options.Find().SetSort(storage.SortAscending("code"))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var medicines []*domain.Medicine
	if err := cursor.All(ctx, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}
