package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInventory(t *testing.T) {
	inv, err := NewInventory("med-1", 25)
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "med-1", inv.MedicineID)
	assert.Equal(t, 25, inv.StockQuantity)
	assert.Equal(t, int64(0), inv.Version)
}

func TestNewInventory_Validation(t *testing.T) {
	_, err := NewInventory("", 10)
	assert.ErrorIs(t, err, ErrMissingMedicine)

	_, err = NewInventory("med-1", -1)
	assert.ErrorIs(t, err, ErrNegativeStock)
}

func TestInventory_Adjust(t *testing.T) {
	inv, err := NewInventory("med-1", 10)
	require.NoError(t, err)

	require.NoError(t, inv.Adjust(5))
	assert.Equal(t, 15, inv.StockQuantity)

	require.NoError(t, inv.Adjust(-15))
	assert.Equal(t, 0, inv.StockQuantity)
}

func TestInventory_AdjustBelowZero(t *testing.T) {
	inv, err := NewInventory("med-1", 10)
	require.NoError(t, err)

	err = inv.Adjust(-100)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 10, inv.StockQuantity, "failed adjustment must leave stock unchanged")
}
