package domain

import (
	"context"
	"time"
)

// CatalogRepository defines the interface for medicine persistence
type CatalogRepository interface {
	Save(ctx context.Context, medicine *Medicine) error
	FindByID(ctx context.Context, id string) (*Medicine, error)
	FindByCode(ctx context.Context, code string) (*Medicine, error)
	FindAll(ctx context.Context) ([]*Medicine, error)
}

// InventoryRepository defines the interface for stock ledger persistence.
// Save performs a compare-and-swap on Version and returns
// ErrVersionConflict when the stored row has moved on.
type InventoryRepository interface {
	Save(ctx context.Context, inventory *Inventory) error
	FindByMedicineID(ctx context.Context, medicineID string) (*Inventory, error)
	FindAll(ctx context.Context) ([]*Inventory, error)
}

// PrescriptionRepository defines the interface for prescription persistence.
// Multi-result queries return prescriptions ordered oldest-first, the
// order the allocation walk depends on.
type PrescriptionRepository interface {
	Save(ctx context.Context, prescription *Prescription) error
	SaveAll(ctx context.Context, prescriptions []*Prescription) error
	FindByID(ctx context.Context, id string) (*Prescription, error)
	FindByNumber(ctx context.Context, number string) (*Prescription, error)
	FindByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []PrescriptionStatus) ([]*Prescription, error)
	FindByOrderAndStatuses(ctx context.Context, orderID string, statuses []PrescriptionStatus) ([]*Prescription, error)
	SumQuantityByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []PrescriptionStatus) (int, error)
	FindAll(ctx context.Context) ([]*Prescription, error)
	FindActive(ctx context.Context) ([]*Prescription, error)
}

// OrderRepository defines the interface for purchase order persistence
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	FindDeliveryDates(ctx context.Context, medicineID string, status OrderStatus) ([]time.Time, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}

// TransactionManager runs fn inside a persistence transaction. The ctx
// passed to fn carries the session; repositories pick it up
// transparently.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
