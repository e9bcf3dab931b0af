package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	deliveryDate := time.Now().UTC().AddDate(0, 0, 5)

	order, err := NewOrder("med-1", 100, deliveryDate)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, OrderStatusOrdered, order.Status)
	assert.Equal(t, deliveryDate, order.DeliveryDate)
}

func TestNewOrder_Validation(t *testing.T) {
	deliveryDate := time.Now().UTC()

	_, err := NewOrder("", 10, deliveryDate)
	assert.ErrorIs(t, err, ErrMissingMedicine)

	_, err = NewOrder("med-1", 0, deliveryDate)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder("med-1", 10, time.Time{})
	assert.ErrorIs(t, err, ErrMissingDeliveryDate)
}

func TestOrder_MarkReceived(t *testing.T) {
	order, err := NewOrder("med-1", 10, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, order.MarkReceived())
	assert.Equal(t, OrderStatusReceived, order.Status)

	err = order.MarkReceived()
	assert.ErrorIs(t, err, ErrOrderAlreadyReceived)
}

func TestNewMedicine(t *testing.T) {
	medicine, err := NewMedicine("  Amoxicillin ", "amx-500")
	require.NoError(t, err)

	assert.Equal(t, "Amoxicillin", medicine.Name)
	assert.Equal(t, "AMX-500", medicine.Code, "codes are stored uppercase")

	_, err = NewMedicine("", "amx")
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = NewMedicine("Amoxicillin", "  ")
	assert.ErrorIs(t, err, ErrMissingCode)
}
