package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrescription(t *testing.T) *Prescription {
	t.Helper()
	p, err := NewPrescription("patient-1", "RX-1001", "med-1", 10, "twice daily")
	require.NoError(t, err)
	return p
}

func TestNewPrescription(t *testing.T) {
	p := newTestPrescription(t)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, PrescriptionStatusNew, p.Status)
	require.Len(t, p.DomainEvents, 1)
	assert.Equal(t, EventTypeReceived, p.DomainEvents[0].EventType())
}

func TestNewPrescription_Validation(t *testing.T) {
	tests := []struct {
		name     string
		patient  string
		number   string
		medicine string
		quantity int
		wantErr  error
	}{
		{"missing patient", "", "RX-1", "med-1", 1, ErrMissingPatient},
		{"missing number", "patient-1", "", "med-1", 1, ErrMissingNumber},
		{"missing medicine", "patient-1", "RX-1", "", 1, ErrMissingMedicine},
		{"zero quantity", "patient-1", "RX-1", "med-1", 0, ErrInvalidQuantity},
		{"negative quantity", "patient-1", "RX-1", "med-1", -5, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPrescription(tt.patient, tt.number, tt.medicine, tt.quantity, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPrescriptionStatus_IsValid(t *testing.T) {
	valid := []PrescriptionStatus{
		PrescriptionStatusNew, PrescriptionStatusOutOfStock,
		PrescriptionStatusAwaitingShipment, PrescriptionStatusStockReceived,
		PrescriptionStatusFilled, PrescriptionStatusPickedUp,
		PrescriptionStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, PrescriptionStatus("UNKNOWN").IsValid())
	assert.False(t, PrescriptionStatus("").IsValid())
}

func TestPrescription_Transitions(t *testing.T) {
	tests := []struct {
		from    PrescriptionStatus
		to      PrescriptionStatus
		allowed bool
	}{
		{PrescriptionStatusNew, PrescriptionStatusFilled, true},
		{PrescriptionStatusNew, PrescriptionStatusOutOfStock, true},
		{PrescriptionStatusNew, PrescriptionStatusAwaitingShipment, true},
		{PrescriptionStatusNew, PrescriptionStatusStockReceived, false},
		{PrescriptionStatusNew, PrescriptionStatusPickedUp, false},
		{PrescriptionStatusOutOfStock, PrescriptionStatusAwaitingShipment, true},
		{PrescriptionStatusOutOfStock, PrescriptionStatusStockReceived, true},
		{PrescriptionStatusOutOfStock, PrescriptionStatusFilled, false},
		{PrescriptionStatusAwaitingShipment, PrescriptionStatusStockReceived, true},
		{PrescriptionStatusAwaitingShipment, PrescriptionStatusOutOfStock, true},
		{PrescriptionStatusAwaitingShipment, PrescriptionStatusFilled, false},
		{PrescriptionStatusStockReceived, PrescriptionStatusFilled, true},
		{PrescriptionStatusStockReceived, PrescriptionStatusOutOfStock, true},
		{PrescriptionStatusStockReceived, PrescriptionStatusAwaitingShipment, false},
		{PrescriptionStatusFilled, PrescriptionStatusPickedUp, true},
		{PrescriptionStatusFilled, PrescriptionStatusNew, false},
		{PrescriptionStatusPickedUp, PrescriptionStatusFilled, false},
		{PrescriptionStatusCancelled, PrescriptionStatusNew, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			p := newTestPrescription(t)
			p.Status = tt.from

			err := p.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, p.Status)
			} else {
				require.Error(t, err)
				assert.True(t, IsInvalidTransition(err))
				assert.Equal(t, tt.from, p.Status)
			}
		})
	}
}

func TestPrescription_AssignOrder(t *testing.T) {
	p := newTestPrescription(t)
	p.ClearEvents()

	deliveryDate := time.Now().UTC().AddDate(0, 0, 3)
	require.NoError(t, p.AssignOrder("order-1", deliveryDate))

	assert.Equal(t, PrescriptionStatusAwaitingShipment, p.Status)
	assert.Equal(t, "order-1", p.OrderID)

	events := p.ClearEvents()
	require.Len(t, events, 1)
	backOrdered, ok := events[0].(*PrescriptionBackOrderedEvent)
	require.True(t, ok)
	assert.Equal(t, "RX-1001", backOrdered.PrescriptionNumber)
	assert.Equal(t, deliveryDate, backOrdered.DeliveryDate)
}

func TestPrescription_AssignOrder_MissingOrder(t *testing.T) {
	p := newTestPrescription(t)
	assert.ErrorIs(t, p.AssignOrder("", time.Now()), ErrMissingOrder)
}

func TestPrescription_FillAndPickUp(t *testing.T) {
	p := newTestPrescription(t)
	p.ClearEvents()

	require.NoError(t, p.Fill())
	assert.Equal(t, PrescriptionStatusFilled, p.Status)

	require.NoError(t, p.PickUp())
	assert.Equal(t, PrescriptionStatusPickedUp, p.Status)

	events := p.ClearEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeFilled, events[0].EventType())
	assert.Equal(t, EventTypePickedUp, events[1].EventType())
}

func TestPrescription_FillTwice(t *testing.T) {
	p := newTestPrescription(t)
	require.NoError(t, p.Fill())

	err := p.Fill()
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}

func TestPrescription_Cancel(t *testing.T) {
	nonTerminal := []PrescriptionStatus{
		PrescriptionStatusNew, PrescriptionStatusOutOfStock,
		PrescriptionStatusAwaitingShipment, PrescriptionStatusStockReceived,
		PrescriptionStatusFilled,
	}
	for _, status := range nonTerminal {
		t.Run(string(status), func(t *testing.T) {
			p := newTestPrescription(t)
			p.Status = status
			p.ClearEvents()

			require.NoError(t, p.Cancel())
			assert.Equal(t, PrescriptionStatusCancelled, p.Status)

			events := p.ClearEvents()
			require.Len(t, events, 1)
			assert.Equal(t, EventTypeCancelled, events[0].EventType())
		})
	}
}

func TestPrescription_CancelTerminal(t *testing.T) {
	for _, status := range []PrescriptionStatus{PrescriptionStatusPickedUp, PrescriptionStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			p := newTestPrescription(t)
			p.Status = status

			err := p.Cancel()
			require.Error(t, err)
			assert.True(t, IsInvalidTransition(err))
		})
	}
}

func TestPrescription_ClearEvents(t *testing.T) {
	p := newTestPrescription(t)

	events := p.ClearEvents()
	assert.Len(t, events, 1)
	assert.Empty(t, p.DomainEvents)
	assert.Empty(t, p.ClearEvents())
}
