package mongodb

import (
	"context"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	storage "github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InventoryRepository persists stock ledgers with optimistic locking.
// Save is a compare-and-swap on the version field; a save against a
// stale version fails with domain.ErrVersionConflict and the engine
// retries the whole transaction.
type InventoryRepository struct {
	collection *storage.InstrumentedCollection
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(client *storage.InstrumentedClient) *InventoryRepository {
	repo := &InventoryRepository{
		collection: client.Collection("inventory"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *InventoryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "medicineId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	r.collection.Raw().Indexes().CreateMany(ctx, indexes)
}

// Save persists the ledger, bumping the version. A version of zero
// means the ledger was never stored and is inserted; anything else is
// replaced only if the stored version still matches the one the caller
// read.
func (r *InventoryRepository) Save(ctx context.Context, inventory *domain.Inventory) error {
	next := *inventory
	next.Version = inventory.Version + 1
	next.UpdatedAt = storage.Now()

	if inventory.Version == 0 {
		if _, err := r.collection.InsertOne(ctx, &next); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrVersionConflict
			}
			return err
		}
		*inventory = next
		return nil
	}

	filter := bson.M{"_id": inventory.ID, "version": inventory.Version}
	result, err := r.collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}

	*inventory = next
	return nil
}

// FindByMedicineID returns the ledger for a medicine, nil when absent
func (r *InventoryRepository) FindByMedicineID(ctx context.Context, medicineID string) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.collection.FindOne(ctx, bson.M{"medicineId": medicineID}).Decode(&inventory)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

// FindAll returns all ledgers
func (r *InventoryRepository) FindAll(ctx context.Context) ([]*domain.Inventory, error) {
	opts := options.Find().SetSort(storage.SortAscending("createdAt"))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var inventories []*domain.Inventory
	if err := cursor.All(ctx, &inventories); err != nil {
		return nil, err
	}
	return inventories, nil
}
