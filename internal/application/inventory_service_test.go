package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
)

type inventoryFixture struct {
	*engineFixture
	svc *InventoryService
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	engine := newEngineFixture(t)
	return &inventoryFixture{
		engineFixture: engine,
		svc: NewInventoryService(
			engine.inventories, engine.prescriptions, engine.orders,
			engine.catalog, engine.svc, newTestLogger(),
		),
	}
}

func TestInventoryService_Create(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")

	dto, err := f.svc.Create(context.Background(), CreateInventoryCommand{
		MedicineID:      med.ID,
		InitialQuantity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, dto.StockQuantity)
	assert.True(t, dto.SufficientStock)
	assert.Zero(t, dto.MinimumOrderCount)
}

func TestInventoryService_Create_Duplicate(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)

	_, err := f.svc.Create(context.Background(), CreateInventoryCommand{MedicineID: med.ID})
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestInventoryService_Create_UnknownMedicine(t *testing.T) {
	f := newInventoryFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInventoryCommand{MedicineID: "missing"})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestInventoryService_Get_ComputesDemand(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)

	// open demand 25 against 10 in stock
	f.addPrescription(t, med.ID, "RX-1", 10)
	f.addPrescription(t, med.ID, "RX-2", 15)

	dto, err := f.svc.Get(context.Background(), med.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, dto.StockQuantity)
	assert.False(t, dto.SufficientStock)
	assert.Equal(t, 15, dto.MinimumOrderCount)
	assert.Nil(t, dto.NextDeliveryDate)
}

func TestInventoryService_Get_NextDeliveryDate(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 0)

	later := time.Now().UTC().AddDate(0, 0, 7)
	sooner := time.Now().UTC().AddDate(0, 0, 2)
	for _, d := range []time.Time{later, sooner} {
		_, err := f.engineFixture.svc.PlaceOrder(context.Background(), CreateOrderCommand{
			MedicineID:   med.ID,
			Quantity:     5,
			DeliveryDate: d,
		})
		require.NoError(t, err)
	}

	dto, err := f.svc.Get(context.Background(), med.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.NextDeliveryDate)
	assert.Equal(t, sooner, *dto.NextDeliveryDate)
}

func TestInventoryService_Get_CountsPromisedStock(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)

	p := f.addPrescription(t, med.ID, "RX-1", 10)
	stored, err := f.prescriptions.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NoError(t, stored.TransitionTo(domain.PrescriptionStatusAwaitingShipment))
	require.NoError(t, stored.MarkStockReceived())
	require.NoError(t, f.prescriptions.Save(context.Background(), stored))

	dto, err := f.svc.Get(context.Background(), med.ID)
	require.NoError(t, err)

	// STOCK_RECEIVED demand is promised out of current stock but does
	// not raise the order quantity
	assert.True(t, dto.SufficientStock)
	assert.Zero(t, dto.MinimumOrderCount)
}

func TestInventoryService_Adjust(t *testing.T) {
	f := newInventoryFixture(t)
	med := f.seedMedicine(t, "AMX")
	f.seedInventory(t, med.ID, 10)

	dto, err := f.svc.Adjust(context.Background(), AdjustStockCommand{MedicineID: med.ID, Delta: -4})
	require.NoError(t, err)
	assert.Equal(t, 6, dto.StockQuantity)
}

func TestInventoryService_Get_NotFound(t *testing.T) {
	f := newInventoryFixture(t)

	_, err := f.svc.Get(context.Background(), "missing")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}
