package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
)

func newPrescriptionService(f *engineFixture) *PrescriptionService {
	return NewPrescriptionService(f.prescriptions, f.svc, newTestLogger())
}

func TestPrescriptionService_UpdateStatus_Fill(t *testing.T) {
	f := newEngineFixture(t)
	svc := newPrescriptionService(f)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)
	p := f.addPrescription(t, med.ID, "RX-1", 10)

	dto, err := svc.UpdateStatus(context.Background(), UpdatePrescriptionStatusCommand{
		ID:     p.ID,
		Status: string(domain.PrescriptionStatusFilled),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PrescriptionStatusFilled), dto.Status)
	assert.Equal(t, 0, f.inventories.stock(med.ID))
}

func TestPrescriptionService_UpdateStatus_PickUp(t *testing.T) {
	f := newEngineFixture(t)
	svc := newPrescriptionService(f)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)
	p := f.addPrescription(t, med.ID, "RX-1", 10)

	_, err := f.svc.FillPrescription(context.Background(), p.ID)
	require.NoError(t, err)

	dto, err := svc.UpdateStatus(context.Background(), UpdatePrescriptionStatusCommand{
		ID:     p.ID,
		Status: string(domain.PrescriptionStatusPickedUp),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PrescriptionStatusPickedUp), dto.Status)
}

func TestPrescriptionService_UpdateStatus_Rejected(t *testing.T) {
	f := newEngineFixture(t)
	svc := newPrescriptionService(f)

	_, err := svc.UpdateStatus(context.Background(), UpdatePrescriptionStatusCommand{
		ID:     "any",
		Status: "NOT_A_STATUS",
	})
	assertAppErrorCode(t, err, apperrors.CodeValidationError)

	// engine-owned states cannot be requested over the API
	for _, status := range []domain.PrescriptionStatus{
		domain.PrescriptionStatusNew,
		domain.PrescriptionStatusOutOfStock,
		domain.PrescriptionStatusAwaitingShipment,
		domain.PrescriptionStatusStockReceived,
		domain.PrescriptionStatusCancelled,
	} {
		_, err := svc.UpdateStatus(context.Background(), UpdatePrescriptionStatusCommand{
			ID:     "any",
			Status: string(status),
		})
		assertAppErrorCode(t, err, apperrors.CodeValidationError)
	}
}

func TestPrescriptionService_List(t *testing.T) {
	f := newEngineFixture(t)
	svc := newPrescriptionService(f)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 100)

	f.addPrescription(t, med.ID, "RX-1", 10)
	cancelled := f.addPrescription(t, med.ID, "RX-2", 10)
	_, err := f.svc.CancelPrescription(context.Background(), cancelled.ID)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "RX-1", active[0].PrescriptionNumber)
}

func TestPrescriptionService_Get(t *testing.T) {
	f := newEngineFixture(t)
	svc := newPrescriptionService(f)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)
	p := f.addPrescription(t, med.ID, "RX-1", 5)

	dto, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "RX-1", dto.PrescriptionNumber)

	byNumber, err := svc.GetByNumber(context.Background(), "RX-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byNumber.ID)

	_, err = svc.Get(context.Background(), "missing")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}
