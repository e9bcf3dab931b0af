package mongodb

import (
	"context"
	"time"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	storage "github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository persists replenishment orders
type OrderRepository struct {
	collection *storage.InstrumentedCollection
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(client *storage.InstrumentedClient) *OrderRepository {
	repo := &OrderRepository{
		collection: client.Collection("orders"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "medicineId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "deliveryDate", Value: 1}}},
	}
	r.collection.Raw().Indexes().CreateMany(ctx, indexes)
}

// Save upserts an order by id
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = storage.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, order, opts)
	return err
}

// FindByID returns an order by id, nil when absent
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll returns all orders, oldest first
func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	opts := options.Find().SetSort(storage.SortAscending("createdAt"))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindDeliveryDates returns the delivery dates of a medicine's orders in
// the given status, earliest first
func (r *OrderRepository) FindDeliveryDates(ctx context.Context, medicineID string, status domain.OrderStatus) ([]time.Time, error) {
	filter := bson.M{"medicineId": medicineID, "status": status}
	opts := options.Find().
		SetSort(storage.SortAscending("deliveryDate")).
		SetProjection(bson.M{"deliveryDate": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		DeliveryDate time.Time `bson:"deliveryDate"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(docs))
	for _, doc := range docs {
		dates = append(dates, doc.DeliveryDate)
	}
	return dates, nil
}
