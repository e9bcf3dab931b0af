package application

import (
	"context"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// demandStatuses count toward open demand when computing the minimum
// order quantity.
var demandStatuses = []domain.PrescriptionStatus{
	domain.PrescriptionStatusNew,
	domain.PrescriptionStatusOutOfStock,
}

// InventoryService exposes the stock ledger. Reads decorate the ledger
// with figures computed from live prescription demand; writes delegate
// to the reconciliation engine so every stock mutation shares one code
// path.
type InventoryService struct {
	inventories   domain.InventoryRepository
	prescriptions domain.PrescriptionRepository
	orders        domain.OrderRepository
	catalog       domain.CatalogRepository
	recon         *ReconciliationService
	logger        *logging.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	inventories domain.InventoryRepository,
	prescriptions domain.PrescriptionRepository,
	orders domain.OrderRepository,
	catalog domain.CatalogRepository,
	recon *ReconciliationService,
	logger *logging.Logger,
) *InventoryService {
	return &InventoryService{
		inventories:   inventories,
		prescriptions: prescriptions,
		orders:        orders,
		catalog:       catalog,
		recon:         recon,
		logger:        logger.WithComponent("inventory-service"),
	}
}

// Create opens the stock ledger for a medicine. One ledger per
// medicine; a second create is a conflict.
func (s *InventoryService) Create(ctx context.Context, cmd CreateInventoryCommand) (*InventoryDTO, error) {
	medicine, err := s.catalog.FindByID(ctx, cmd.MedicineID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperrors.ErrNotFoundWithID("medicine", cmd.MedicineID)
	}

	existing, err := s.inventories.FindByMedicineID(ctx, cmd.MedicineID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConflict("inventory already exists for medicine").
			WithDetail("medicineId", cmd.MedicineID)
	}

	inventory, err := domain.NewInventory(cmd.MedicineID, cmd.InitialQuantity)
	if err != nil {
		return nil, mapDomainError(err)
	}
	if err := s.inventories.Save(ctx, inventory); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Inventory created",
		"medicineId", inventory.MedicineID,
		"initialQuantity", inventory.StockQuantity,
	)

	return s.decorate(ctx, inventory)
}

// Get returns the ledger for a medicine with computed sufficiency
func (s *InventoryService) Get(ctx context.Context, medicineID string) (*InventoryDTO, error) {
	inventory, err := s.inventories.FindByMedicineID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if inventory == nil {
		return nil, apperrors.ErrNotFound("inventory").WithDetail("medicineId", medicineID)
	}
	return s.decorate(ctx, inventory)
}

// List returns all ledgers with computed sufficiency
func (s *InventoryService) List(ctx context.Context) ([]*InventoryDTO, error) {
	inventories, err := s.inventories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*InventoryDTO, 0, len(inventories))
	for _, inventory := range inventories {
		dto, err := s.decorate(ctx, inventory)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// Adjust applies a signed delta to a medicine's stock via the engine
func (s *InventoryService) Adjust(ctx context.Context, cmd AdjustStockCommand) (*InventoryDTO, error) {
	inventory, err := s.recon.AdjustStock(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, inventory)
}

// decorate computes the read-side figures: minimumOrderCount is the
// open demand (NEW, OUT_OF_STOCK) not covered by stock on hand;
// sufficientStock also counts STOCK_RECEIVED, the demand already
// promised out of current stock.
func (s *InventoryService) decorate(ctx context.Context, inventory *domain.Inventory) (*InventoryDTO, error) {
	openDemand, err := s.prescriptions.SumQuantityByMedicineAndStatuses(ctx, inventory.MedicineID, demandStatuses)
	if err != nil {
		return nil, err
	}
	promised, err := s.prescriptions.SumQuantityByMedicineAndStatuses(ctx, inventory.MedicineID,
		[]domain.PrescriptionStatus{domain.PrescriptionStatusStockReceived})
	if err != nil {
		return nil, err
	}

	minimumOrder := openDemand - inventory.StockQuantity
	if minimumOrder < 0 {
		minimumOrder = 0
	}

	dto := &InventoryDTO{
		ID:                inventory.ID,
		MedicineID:        inventory.MedicineID,
		StockQuantity:     inventory.StockQuantity,
		SufficientStock:   inventory.StockQuantity >= openDemand+promised,
		MinimumOrderCount: minimumOrder,
		UpdatedAt:         inventory.UpdatedAt,
	}

	dates, err := s.orders.FindDeliveryDates(ctx, inventory.MedicineID, domain.OrderStatusOrdered)
	if err != nil {
		return nil, err
	}
	if len(dates) > 0 {
		next := dates[0]
		dto.NextDeliveryDate = &next
	}

	return dto, nil
}
