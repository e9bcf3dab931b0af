package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the stock ledger for a single medicine. One row per
// medicine, enforced by a unique index on medicineId. Version backs the
// optimistic CAS in the repository: every successful save increments it,
// and a save against a stale version fails with ErrVersionConflict.
type Inventory struct {
	ID            string    `bson:"_id"`
	MedicineID    string    `bson:"medicineId"`
	StockQuantity int       `bson:"stockQuantity"`
	Version       int64     `bson:"version"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// NewInventory creates the stock ledger for a medicine.
func NewInventory(medicineID string, initialQuantity int) (*Inventory, error) {
	if medicineID == "" {
		return nil, ErrMissingMedicine
	}
	if initialQuantity < 0 {
		return nil, ErrNegativeStock
	}

	now := time.Now().UTC()

	return &Inventory{
		ID:            uuid.New().String(),
		MedicineID:    medicineID,
		StockQuantity: initialQuantity,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Adjust applies a signed delta to the stock quantity. A delta that
// would drive the quantity below zero fails with ErrInsufficientStock
// and leaves the ledger unchanged.
func (i *Inventory) Adjust(delta int) error {
	result := i.StockQuantity + delta
	if result < 0 {
		return ErrInsufficientStock
	}

	i.StockQuantity = result
	i.UpdatedAt = time.Now().UTC()
	return nil
}
