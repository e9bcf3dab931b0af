package application

import (
	"context"
	"errors"
	"strings"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
	"github.com/pharmacy-platform/stock-service/pkg/metrics"
	"github.com/pharmacy-platform/stock-service/pkg/resilience"
)

// admissionStatuses are the states whose quantities count as pending
// demand when a new prescription is admitted.
var admissionStatuses = []domain.PrescriptionStatus{
	domain.PrescriptionStatusNew,
	domain.PrescriptionStatusOutOfStock,
	domain.PrescriptionStatusStockReceived,
}

// backorderStatuses are the states a replenishment order picks up.
var backorderStatuses = []domain.PrescriptionStatus{
	domain.PrescriptionStatusNew,
	domain.PrescriptionStatusOutOfStock,
}

// ReconciliationService is the stock reconciliation and fulfillment
// engine. Every mutating procedure runs under a per-medicine lock and a
// transaction, with a bounded retry on optimistic version conflicts, so
// concurrent mutations of one medicine serialize while different
// medicines proceed in parallel.
type ReconciliationService struct {
	inventories   domain.InventoryRepository
	prescriptions domain.PrescriptionRepository
	orders        domain.OrderRepository
	catalog       domain.CatalogRepository
	publisher     domain.EventPublisher
	tx            domain.TransactionManager
	locks         *resilience.KeyedLock
	retry         *resilience.RetryConfig
	metrics       *metrics.Metrics
	logger        *logging.Logger
}

// NewReconciliationService creates the engine
func NewReconciliationService(
	inventories domain.InventoryRepository,
	prescriptions domain.PrescriptionRepository,
	orders domain.OrderRepository,
	catalog domain.CatalogRepository,
	publisher domain.EventPublisher,
	tx domain.TransactionManager,
	locks *resilience.KeyedLock,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReconciliationService {
	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = func(err error) bool {
		return errors.Is(err, domain.ErrVersionConflict)
	}

	return &ReconciliationService{
		inventories:   inventories,
		prescriptions: prescriptions,
		orders:        orders,
		catalog:       catalog,
		publisher:     publisher,
		tx:            tx,
		locks:         locks,
		retry:         retry,
		metrics:       m,
		logger:        logger.WithComponent("reconciliation-service"),
	}
}

// withMedicineLock serializes fn per medicine and runs it inside a
// transaction, retrying on version conflicts. Contention that outlasts
// the lock wait or the retry budget surfaces as LOCK_CONTENTION;
// nothing is committed in that case.
func (s *ReconciliationService) withMedicineLock(ctx context.Context, operation, medicineID string, fn func(ctx context.Context) error) error {
	if err := s.locks.Acquire(ctx, medicineID); err != nil {
		if errors.Is(err, resilience.ErrLockTimeout) {
			if s.metrics != nil {
				s.metrics.RecordLockContention(operation)
			}
			return apperrors.ErrLockContention(medicineID).Wrap(err)
		}
		return err
	}
	defer s.locks.Release(medicineID)

	err := resilience.Retry(ctx, s.retry, func() error {
		return s.tx.Execute(ctx, fn)
	})
	if errors.Is(err, resilience.ErrRetriesExhausted) {
		if s.metrics != nil {
			s.metrics.RecordLockContention(operation)
		}
		return apperrors.ErrLockContention(medicineID).Wrap(err)
	}
	return err
}

func (s *ReconciliationService) resolveMedicine(ctx context.Context, id, code string) (*domain.Medicine, error) {
	switch {
	case id != "":
		medicine, err := s.catalog.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if medicine == nil {
			return nil, apperrors.ErrNotFoundWithID("medicine", id)
		}
		return medicine, nil
	case code != "":
		medicine, err := s.catalog.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
		if err != nil {
			return nil, err
		}
		if medicine == nil {
			return nil, apperrors.ErrNotFound("medicine").WithDetail("code", code)
		}
		return medicine, nil
	default:
		return nil, apperrors.ErrValidation("medicineId or medicineCode is required")
	}
}

// publish sends domain events to the gateway. Publishing happens after
// commit and failures do not roll the state change back; the error is
// logged and the producer metrics record it.
func (s *ReconciliationService) publish(ctx context.Context, events []domain.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Error("Failed to publish prescription events")
	}
}

// AddPrescription admits a prescription. Pending demand for the
// medicine (NEW, OUT_OF_STOCK, STOCK_RECEIVED) plus the new quantity is
// compared against stock on hand; the prescription enters as NEW when
// it fits and OUT_OF_STOCK when it does not. Stock is never mutated
// here.
func (s *ReconciliationService) AddPrescription(ctx context.Context, cmd CreatePrescriptionCommand) (*PrescriptionDTO, error) {
	medicine, err := s.resolveMedicine(ctx, cmd.MedicineID, cmd.MedicineCode)
	if err != nil {
		return nil, err
	}

	existing, err := s.prescriptions.FindByNumber(ctx, cmd.PrescriptionNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConflict("prescription number already exists").
			WithDetail("prescriptionNumber", cmd.PrescriptionNumber)
	}

	var created *domain.Prescription
	err = s.withMedicineLock(ctx, "add_prescription", medicine.ID, func(txCtx context.Context) error {
		p, err := domain.NewPrescription(cmd.PatientID, cmd.PrescriptionNumber, medicine.ID, cmd.Quantity, cmd.Instructions)
		if err != nil {
			return err
		}

		pending, err := s.prescriptions.SumQuantityByMedicineAndStatuses(txCtx, medicine.ID, admissionStatuses)
		if err != nil {
			return err
		}

		stock := 0
		inventory, err := s.inventories.FindByMedicineID(txCtx, medicine.ID)
		if err != nil {
			return err
		}
		if inventory != nil {
			stock = inventory.StockQuantity
		}

		if pending+p.Quantity > stock {
			if err := p.MarkOutOfStock(); err != nil {
				return err
			}
		}

		if err := s.prescriptions.Save(txCtx, p); err != nil {
			return err
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	s.publish(ctx, created.ClearEvents())
	if s.metrics != nil {
		s.metrics.RecordPrescriptionCreated(string(created.Status))
	}
	s.logger.WithContext(ctx).Info("Prescription admitted",
		"prescriptionNumber", created.PrescriptionNumber,
		"medicineId", created.MedicineID,
		"status", created.Status,
	)

	return toPrescriptionDTO(created), nil
}

// PlaceOrder creates a replenishment order and links every waiting
// prescription for the medicine (NEW, OUT_OF_STOCK) to it, moving them
// to AWAITING_SHIPMENT.
func (s *ReconciliationService) PlaceOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	medicine, err := s.resolveMedicine(ctx, cmd.MedicineID, "")
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	var linked []*domain.Prescription
	err = s.withMedicineLock(ctx, "place_order", medicine.ID, func(txCtx context.Context) error {
		linked = nil

		o, err := domain.NewOrder(medicine.ID, cmd.Quantity, cmd.DeliveryDate)
		if err != nil {
			return err
		}
		if err := s.orders.Save(txCtx, o); err != nil {
			return err
		}

		waiting, err := s.prescriptions.FindByMedicineAndStatuses(txCtx, medicine.ID, backorderStatuses)
		if err != nil {
			return err
		}
		for _, p := range waiting {
			if err := p.AssignOrder(o.ID, o.DeliveryDate); err != nil {
				return err
			}
		}
		if len(waiting) > 0 {
			if err := s.prescriptions.SaveAll(txCtx, waiting); err != nil {
				return err
			}
		}

		order = o
		linked = waiting
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	for _, p := range linked {
		s.publish(ctx, p.ClearEvents())
	}
	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.logger.WithContext(ctx).Info("Order placed",
		"orderId", order.ID,
		"medicineId", order.MedicineID,
		"quantity", order.Quantity,
		"linkedPrescriptions", len(linked),
	)

	return toOrderDTO(order), nil
}

// PlaceOrders places a batch of orders, failing fast on the first error.
func (s *ReconciliationService) PlaceOrders(ctx context.Context, cmds []CreateOrderCommand) ([]*OrderDTO, error) {
	dtos := make([]*OrderDTO, 0, len(cmds))
	for _, cmd := range cmds {
		dto, err := s.PlaceOrder(ctx, cmd)
		if err != nil {
			return dtos, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// ReceiveOrder marks an order RECEIVED, adds its quantity to stock, and
// walks the prescriptions linked to the order oldest-first: each one
// that fits in the new stock level becomes STOCK_RECEIVED and consumes
// its quantity from the running total, each one that does not fit
// becomes OUT_OF_STOCK. The walk stops once the running total is
// exhausted; anything after that point stays AWAITING_SHIPMENT.
// Receiving the same order twice fails and changes nothing.
func (s *ReconciliationService) ReceiveOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	existing, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFoundWithID("order", orderID)
	}

	var received *domain.Order
	var walked []*domain.Prescription
	err = s.withMedicineLock(ctx, "receive_order", existing.MedicineID, func(txCtx context.Context) error {
		walked = nil

		order, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperrors.ErrNotFoundWithID("order", orderID)
		}
		if err := order.MarkReceived(); err != nil {
			return err
		}

		inventory, err := s.inventories.FindByMedicineID(txCtx, order.MedicineID)
		if err != nil {
			return err
		}
		if inventory == nil {
			return apperrors.ErrNotFound("inventory").WithDetail("medicineId", order.MedicineID)
		}
		if err := inventory.Adjust(order.Quantity); err != nil {
			return err
		}
		if err := s.inventories.Save(txCtx, inventory); err != nil {
			return err
		}
		if err := s.orders.Save(txCtx, order); err != nil {
			return err
		}

		waiting, err := s.prescriptions.FindByOrderAndStatuses(txCtx, order.ID, []domain.PrescriptionStatus{domain.PrescriptionStatusAwaitingShipment})
		if err != nil {
			return err
		}

		available := inventory.StockQuantity
		for _, p := range waiting {
			if available <= 0 {
				// Nothing left to hand out; the rest stay queued for
				// the next delivery.
				break
			}
			if p.Quantity <= available {
				if err := p.MarkStockReceived(); err != nil {
					return err
				}
				available -= p.Quantity
			} else {
				if err := p.MarkOutOfStock(); err != nil {
					return err
				}
			}
		}
		if len(waiting) > 0 {
			if err := s.prescriptions.SaveAll(txCtx, waiting); err != nil {
				return err
			}
		}

		received = order
		walked = waiting
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderReceived()
		for _, p := range walked {
			switch p.Status {
			case domain.PrescriptionStatusStockReceived:
				s.metrics.RecordAllocationResolved("stock_received")
			case domain.PrescriptionStatusOutOfStock:
				s.metrics.RecordAllocationResolved("out_of_stock")
			}
		}
	}
	s.logger.WithContext(ctx).Info("Order received",
		"orderId", received.ID,
		"medicineId", received.MedicineID,
		"quantity", received.Quantity,
		"prescriptionsWalked", len(walked),
	)

	return toOrderDTO(received), nil
}

// FillPrescription decrements stock by the prescription quantity and
// marks it FILLED. Legal from NEW or STOCK_RECEIVED. An adjustment
// that would drive stock negative aborts the whole operation with the
// prescription unchanged.
func (s *ReconciliationService) FillPrescription(ctx context.Context, id string) (*PrescriptionDTO, error) {
	existing, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFoundWithID("prescription", id)
	}

	var filled *domain.Prescription
	err = s.withMedicineLock(ctx, "fill_prescription", existing.MedicineID, func(txCtx context.Context) error {
		p, err := s.prescriptions.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.ErrNotFoundWithID("prescription", id)
		}

		// Guard the transition before touching stock so an illegal
		// fill never consumes inventory.
		if !p.CanTransitionTo(domain.PrescriptionStatusFilled) {
			return &domain.InvalidTransitionError{From: p.Status, To: domain.PrescriptionStatusFilled}
		}

		inventory, err := s.inventories.FindByMedicineID(txCtx, p.MedicineID)
		if err != nil {
			return err
		}
		if inventory == nil {
			return apperrors.ErrNotFound("inventory").WithDetail("medicineId", p.MedicineID)
		}
		if err := inventory.Adjust(-p.Quantity); err != nil {
			return err
		}
		if err := s.inventories.Save(txCtx, inventory); err != nil {
			return err
		}

		if err := p.Fill(); err != nil {
			return err
		}
		if err := s.prescriptions.Save(txCtx, p); err != nil {
			return err
		}

		filled = p
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	s.publish(ctx, filled.ClearEvents())
	if s.metrics != nil {
		s.metrics.RecordPrescriptionFilled()
	}

	return toPrescriptionDTO(filled), nil
}

// PickUpPrescription hands a FILLED prescription to the patient. The
// transition runs under the medicine lock with a fresh read so it
// cannot race another status change on the same prescription.
func (s *ReconciliationService) PickUpPrescription(ctx context.Context, id string) (*PrescriptionDTO, error) {
	existing, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFoundWithID("prescription", id)
	}

	var picked *domain.Prescription
	err = s.withMedicineLock(ctx, "pick_up_prescription", existing.MedicineID, func(txCtx context.Context) error {
		p, err := s.prescriptions.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.ErrNotFoundWithID("prescription", id)
		}
		if err := p.PickUp(); err != nil {
			return err
		}
		if err := s.prescriptions.Save(txCtx, p); err != nil {
			return err
		}

		picked = p
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	s.publish(ctx, picked.ClearEvents())

	return toPrescriptionDTO(picked), nil
}

// CancelPrescription cancels by id.
func (s *ReconciliationService) CancelPrescription(ctx context.Context, id string) (*PrescriptionDTO, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFoundWithID("prescription", id)
	}
	return s.cancel(ctx, p)
}

// CancelByNumber cancels by prescription number, the identifier inbound
// events carry.
func (s *ReconciliationService) CancelByNumber(ctx context.Context, number string) (*PrescriptionDTO, error) {
	p, err := s.prescriptions.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFound("prescription").WithDetail("prescriptionNumber", number)
	}
	return s.cancel(ctx, p)
}

// cancel applies the terminal CANCELLED status. The caller's read only
// locates the prescription; the definitive state is read again under
// the medicine lock so a concurrent transition on the same prescription
// is never overwritten by a stale snapshot.
func (s *ReconciliationService) cancel(ctx context.Context, existing *domain.Prescription) (*PrescriptionDTO, error) {
	var cancelled *domain.Prescription
	err := s.withMedicineLock(ctx, "cancel_prescription", existing.MedicineID, func(txCtx context.Context) error {
		p, err := s.prescriptions.FindByID(txCtx, existing.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.ErrNotFoundWithID("prescription", existing.ID)
		}
		if err := p.Cancel(); err != nil {
			return err
		}
		if err := s.prescriptions.Save(txCtx, p); err != nil {
			return err
		}

		cancelled = p
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	s.publish(ctx, cancelled.ClearEvents())
	if s.metrics != nil {
		s.metrics.RecordPrescriptionCancelled()
	}
	s.logger.WithContext(ctx).Info("Prescription cancelled",
		"prescriptionNumber", cancelled.PrescriptionNumber,
	)

	return toPrescriptionDTO(cancelled), nil
}

// AdjustStock applies a signed delta to a medicine's stock under the
// per-medicine lock. A delta that would drive stock below zero is
// rejected with the ledger unchanged.
func (s *ReconciliationService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*domain.Inventory, error) {
	var adjusted *domain.Inventory
	err := s.withMedicineLock(ctx, "adjust_stock", cmd.MedicineID, func(txCtx context.Context) error {
		inventory, err := s.inventories.FindByMedicineID(txCtx, cmd.MedicineID)
		if err != nil {
			return err
		}
		if inventory == nil {
			return apperrors.ErrNotFound("inventory").WithDetail("medicineId", cmd.MedicineID)
		}
		if err := inventory.Adjust(cmd.Delta); err != nil {
			return err
		}
		if err := s.inventories.Save(txCtx, inventory); err != nil {
			return err
		}

		adjusted = inventory
		return nil
	})

	if s.metrics != nil {
		s.metrics.RecordStockAdjustment(err == nil)
	}
	if err != nil {
		return nil, mapDomainError(err)
	}

	return adjusted, nil
}
