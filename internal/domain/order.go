package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of a purchase order
type OrderStatus string

const (
	OrderStatusOrdered  OrderStatus = "ORDERED"
	OrderStatusReceived OrderStatus = "RECEIVED"
)

// IsValid checks if the order status is a known value
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusOrdered || s == OrderStatusReceived
}

// Order is a purchase order that replenishes stock for one medicine.
type Order struct {
	ID           string      `bson:"_id"`
	MedicineID   string      `bson:"medicineId"`
	Quantity     int         `bson:"quantity"`
	DeliveryDate time.Time   `bson:"deliveryDate"`
	Status       OrderStatus `bson:"status"`
	CreatedAt    time.Time   `bson:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt"`
}

// NewOrder creates a purchase order in ORDERED state.
func NewOrder(medicineID string, quantity int, deliveryDate time.Time) (*Order, error) {
	if medicineID == "" {
		return nil, ErrMissingMedicine
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if deliveryDate.IsZero() {
		return nil, ErrMissingDeliveryDate
	}

	now := time.Now().UTC()

	return &Order{
		ID:           uuid.New().String(),
		MedicineID:   medicineID,
		Quantity:     quantity,
		DeliveryDate: deliveryDate,
		Status:       OrderStatusOrdered,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MarkReceived transitions the order to RECEIVED. Legal only from
// ORDERED; receiving an order twice fails with ErrOrderAlreadyReceived
// so the allocation walk never runs twice for the same delivery.
func (o *Order) MarkReceived() error {
	if o.Status != OrderStatusOrdered {
		return ErrOrderAlreadyReceived
	}

	o.Status = OrderStatusReceived
	o.UpdatedAt = time.Now().UTC()
	return nil
}
