package application

import (
	"context"
	"time"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// OrderService exposes replenishment orders. Creation and receipt
// delegate to the reconciliation engine, which owns backorder linking
// and the allocation walk.
type OrderService struct {
	orders domain.OrderRepository
	recon  *ReconciliationService
	logger *logging.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders domain.OrderRepository, recon *ReconciliationService, logger *logging.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		recon:  recon,
		logger: logger.WithComponent("order-service"),
	}
}

// Create places a replenishment order
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	return s.recon.PlaceOrder(ctx, cmd)
}

// CreateBatch places several orders, failing fast on the first error
func (s *OrderService) CreateBatch(ctx context.Context, cmds []CreateOrderCommand) ([]*OrderDTO, error) {
	return s.recon.PlaceOrders(ctx, cmds)
}

// Receive marks an order as delivered and reconciles waiting prescriptions
func (s *OrderService) Receive(ctx context.Context, orderID string) (*OrderDTO, error) {
	return s.recon.ReceiveOrder(ctx, orderID)
}

// Get returns an order by id
func (s *OrderService) Get(ctx context.Context, id string) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", id)
	}
	return toOrderDTO(order), nil
}

// List returns all orders
func (s *OrderService) List(ctx context.Context) ([]*OrderDTO, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	return dtos, nil
}

// DeliveryDates returns the pending delivery dates for a medicine,
// earliest first
func (s *OrderService) DeliveryDates(ctx context.Context, medicineID string) ([]time.Time, error) {
	return s.orders.FindDeliveryDates(ctx, medicineID, domain.OrderStatusOrdered)
}
