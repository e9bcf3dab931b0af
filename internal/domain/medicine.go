package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Medicine is a catalog entry. Immutable after creation.
type Medicine struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Code      string    `bson:"code"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMedicine creates a catalog entry. Codes are stored uppercase so
// lookups from inbound events are case-insensitive.
func NewMedicine(name, code string) (*Medicine, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}

	now := time.Now().UTC()

	return &Medicine{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
