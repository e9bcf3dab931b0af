package application

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

func newTestLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "stock-service-test",
		Output:      io.Discard,
	})
}

// memCatalog is an in-memory CatalogRepository
type memCatalog struct {
	mu   sync.Mutex
	byID map[string]*domain.Medicine
}

func newMemCatalog() *memCatalog {
	return &memCatalog{byID: make(map[string]*domain.Medicine)}
}

func (m *memCatalog) Save(ctx context.Context, medicine *domain.Medicine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *medicine
	m.byID[medicine.ID] = &cp
	return nil
}

func (m *memCatalog) FindByID(ctx context.Context, id string) (*domain.Medicine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if medicine, ok := m.byID[id]; ok {
		cp := *medicine
		return &cp, nil
	}
	return nil, nil
}

func (m *memCatalog) FindByCode(ctx context.Context, code string) (*domain.Medicine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, medicine := range m.byID {
		if medicine.Code == code {
			cp := *medicine
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) FindAll(ctx context.Context) ([]*domain.Medicine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	medicines := make([]*domain.Medicine, 0, len(m.byID))
	for _, medicine := range m.byID {
		cp := *medicine
		medicines = append(medicines, &cp)
	}
	return medicines, nil
}

// memInventories is an in-memory InventoryRepository with the same CAS
// semantics as the MongoDB implementation. failSaves forces the next n
// saves to fail with ErrVersionConflict.
type memInventories struct {
	mu         sync.Mutex
	byMedicine map[string]*domain.Inventory
	failSaves  int
	saves      int
}

func newMemInventories() *memInventories {
	return &memInventories{byMedicine: make(map[string]*domain.Inventory)}
}

func (m *memInventories) seed(inv *domain.Inventory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.byMedicine[inv.MedicineID] = &cp
}

func (m *memInventories) stock(medicineID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.byMedicine[medicineID]; ok {
		return inv.StockQuantity
	}
	return 0
}

func (m *memInventories) Save(ctx context.Context, inventory *domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++

	if m.failSaves > 0 {
		m.failSaves--
		return domain.ErrVersionConflict
	}

	if stored, ok := m.byMedicine[inventory.MedicineID]; ok && stored.Version != inventory.Version {
		return domain.ErrVersionConflict
	}

	inventory.Version++
	cp := *inventory
	m.byMedicine[inventory.MedicineID] = &cp
	return nil
}

func (m *memInventories) FindByMedicineID(ctx context.Context, medicineID string) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.byMedicine[medicineID]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (m *memInventories) FindAll(ctx context.Context) ([]*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inventories := make([]*domain.Inventory, 0, len(m.byMedicine))
	for _, inv := range m.byMedicine {
		cp := *inv
		inventories = append(inventories, &cp)
	}
	return inventories, nil
}

// memPrescriptions is an in-memory PrescriptionRepository preserving
// insertion order, the stand-in for createdAt-ascending queries. Save
// enforces the unique prescriptionNumber index the way the MongoDB
// repository does. afterRead, when set, runs once after the next
// FindByID or FindByNumber, standing in for a competing writer that
// commits between a caller's unlocked read and its locked re-read.
type memPrescriptions struct {
	mu        sync.Mutex
	byID      map[string]*domain.Prescription
	order     []string
	afterRead func()
}

func newMemPrescriptions() *memPrescriptions {
	return &memPrescriptions{byID: make(map[string]*domain.Prescription)}
}

func (m *memPrescriptions) Save(ctx context.Context, prescription *domain.Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if id != prescription.ID && m.byID[id].PrescriptionNumber == prescription.PrescriptionNumber {
			return domain.ErrDuplicateNumber
		}
	}
	if _, ok := m.byID[prescription.ID]; !ok {
		m.order = append(m.order, prescription.ID)
	}
	cp := *prescription
	cp.DomainEvents = nil
	m.byID[prescription.ID] = &cp
	return nil
}

func (m *memPrescriptions) SaveAll(ctx context.Context, prescriptions []*domain.Prescription) error {
	for _, p := range prescriptions {
		if err := m.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *memPrescriptions) FindByID(ctx context.Context, id string) (*domain.Prescription, error) {
	m.mu.Lock()
	var result *domain.Prescription
	if p, ok := m.byID[id]; ok {
		cp := *p
		result = &cp
	}
	hook := m.afterRead
	m.afterRead = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return result, nil
}

func (m *memPrescriptions) FindByNumber(ctx context.Context, number string) (*domain.Prescription, error) {
	m.mu.Lock()
	var result *domain.Prescription
	for _, id := range m.order {
		if m.byID[id].PrescriptionNumber == number {
			cp := *m.byID[id]
			result = &cp
			break
		}
	}
	hook := m.afterRead
	m.afterRead = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return result, nil
}

func (m *memPrescriptions) FindByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []domain.PrescriptionStatus) ([]*domain.Prescription, error) {
	return m.filter(func(p *domain.Prescription) bool {
		return p.MedicineID == medicineID && statusIn(p.Status, statuses)
	}), nil
}

func (m *memPrescriptions) FindByOrderAndStatuses(ctx context.Context, orderID string, statuses []domain.PrescriptionStatus) ([]*domain.Prescription, error) {
	return m.filter(func(p *domain.Prescription) bool {
		return p.OrderID == orderID && statusIn(p.Status, statuses)
	}), nil
}

func (m *memPrescriptions) SumQuantityByMedicineAndStatuses(ctx context.Context, medicineID string, statuses []domain.PrescriptionStatus) (int, error) {
	total := 0
	for _, p := range m.filter(func(p *domain.Prescription) bool {
		return p.MedicineID == medicineID && statusIn(p.Status, statuses)
	}) {
		total += p.Quantity
	}
	return total, nil
}

func (m *memPrescriptions) FindAll(ctx context.Context) ([]*domain.Prescription, error) {
	return m.filter(func(*domain.Prescription) bool { return true }), nil
}

func (m *memPrescriptions) FindActive(ctx context.Context) ([]*domain.Prescription, error) {
	return m.filter(func(p *domain.Prescription) bool {
		return !p.Status.IsTerminal()
	}), nil
}

func (m *memPrescriptions) filter(keep func(*domain.Prescription) bool) []*domain.Prescription {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Prescription
	for _, id := range m.order {
		if keep(m.byID[id]) {
			cp := *m.byID[id]
			result = append(result, &cp)
		}
	}
	return result
}

func statusIn(status domain.PrescriptionStatus, statuses []domain.PrescriptionStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// memOrders is an in-memory OrderRepository
type memOrders struct {
	mu    sync.Mutex
	byID  map[string]*domain.Order
	order []string
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*domain.Order)}
}

func (m *memOrders) Save(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[order.ID]; !ok {
		m.order = append(m.order, order.ID)
	}
	cp := *order
	m.byID[order.ID] = &cp
	return nil
}

func (m *memOrders) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.byID[id]; ok {
		cp := *order
		return &cp, nil
	}
	return nil, nil
}

func (m *memOrders) FindAll(ctx context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]*domain.Order, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.byID[id]
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (m *memOrders) FindDeliveryDates(ctx context.Context, medicineID string, status domain.OrderStatus) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dates []time.Time
	for _, id := range m.order {
		order := m.byID[id]
		if order.MedicineID == medicineID && order.Status == status {
			dates = append(dates, order.DeliveryDate)
		}
	}
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
	return dates, nil
}

// capturingPublisher records published events
type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// immediateTx runs the function without any transaction scope
type immediateTx struct{}

func (immediateTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
