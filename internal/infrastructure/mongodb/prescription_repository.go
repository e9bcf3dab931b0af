package mongodb

import (
	"context"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	storage "github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PrescriptionRepository persists prescriptions. Multi-result queries
// sort by createdAt ascending so the allocation walk sees the oldest
// prescriptions first.
type PrescriptionRepository struct {
	collection *storage.InstrumentedCollection
}

// NewPrescriptionRepository creates a new prescription repository
func NewPrescriptionRepository(client *storage.InstrumentedClient) *PrescriptionRepository {
	repo := &PrescriptionRepository{
		collection: client.Collection("prescriptions"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PrescriptionRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "prescriptionNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "medicineId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "orderId", Value: 1}}},
	}
	r.collection.Raw().Indexes().CreateMany(ctx, indexes)
}

// Save upserts a prescription by id. A write that trips the unique
// prescriptionNumber index, such as two concurrent admissions racing
// past the duplicate pre-check, surfaces as ErrDuplicateNumber.
func (r *PrescriptionRepository) Save(ctx context.Context, prescription *domain.Prescription) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": prescription.ID}, prescription, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateNumber
	}
	return err
}

// SaveAll upserts a batch of prescriptions
func (r *PrescriptionRepository) SaveAll(ctx context.Context, prescriptions []*domain.Prescription) error {
	for _, p := range prescriptions {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns a prescription by id, nil when absent
func (r *PrescriptionRepository) FindByID(ctx context.Context, id string) (*domain.Prescription, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByNumber returns a prescription by its number, nil when absent
func (r *PrescriptionRepository) FindByNumber(ctx context.Context, number string) (*domain.Prescription, error) {
	return r.findOne(ctx, bson.M{"prescriptionNumber": number})
}

func (r *PrescriptionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Prescription, error) {
	var prescription domain.Prescription
	err := r.collection.FindOne(ctx, filter).Decode(&prescription)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

// FindByMedicineAndStatuses returns the prescriptions for a medicine in
// any of the given statuses, oldest first
func (r *PrescriptionRepository) FindByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []domain.PrescriptionStatus) ([]*domain.Prescription, error) {
	return r.find(ctx, bson.M{
		"medicineId": medicineID,
		"status":     bson.M{"$in": statuses},
	})
}

// FindByOrderAndStatuses returns the prescriptions linked to an order in
// any of the given statuses, oldest first
func (r *PrescriptionRepository) FindByOrderAndStatuses(ctx context.Context, orderID string, statuses []domain.PrescriptionStatus) ([]*domain.Prescription, error) {
	return r.find(ctx, bson.M{
		"orderId": orderID,
		"status":  bson.M{"$in": statuses},
	})
}

// SumQuantityByMedicineAndStatuses totals the quantities of a medicine's
// prescriptions in the given statuses
func (r *PrescriptionRepository) SumQuantityByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []domain.PrescriptionStatus) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"medicineId": medicineID,
			"status":     bson.M{"$in": statuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// FindAll returns all prescriptions, oldest first
func (r *PrescriptionRepository) FindAll(ctx context.Context) ([]*domain.Prescription, error) {
	return r.find(ctx, bson.M{})
}

// FindActive returns the prescriptions still in flight
func (r *PrescriptionRepository) FindActive(ctx context.Context) ([]*domain.Prescription, error) {
	return r.find(ctx, bson.M{
		"status": bson.M{"$nin": []domain.PrescriptionStatus{
			domain.PrescriptionStatusPickedUp,
			domain.PrescriptionStatusCancelled,
		}},
	})
}

func (r *PrescriptionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Prescription, error) {
	opts := options.Find().SetSort(storage.SortAscending("createdAt"))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prescriptions []*domain.Prescription
	if err := cursor.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}
