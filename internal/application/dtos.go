package application

import (
	"time"

	"github.com/pharmacy-platform/stock-service/internal/domain"
)

// MedicineDTO is the API representation of a catalog entry
type MedicineDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// InventoryDTO is the API representation of a stock ledger.
// SufficientStock and MinimumOrderCount are computed at read time and
// never persisted.
type InventoryDTO struct {
	ID                string     `json:"id"`
	MedicineID        string     `json:"medicineId"`
	StockQuantity     int        `json:"stockQuantity"`
	SufficientStock   bool       `json:"sufficientStock"`
	MinimumOrderCount int        `json:"minimumOrderCount"`
	NextDeliveryDate  *time.Time `json:"nextDeliveryDate,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// OrderDTO is the API representation of a replenishment order
type OrderDTO struct {
	ID           string    `json:"id"`
	MedicineID   string    `json:"medicineId"`
	Quantity     int       `json:"quantity"`
	DeliveryDate time.Time `json:"deliveryDate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PrescriptionDTO is the API representation of a prescription
type PrescriptionDTO struct {
	ID                 string    `json:"id"`
	PatientID          string    `json:"patientId"`
	PrescriptionNumber string    `json:"prescriptionNumber"`
	MedicineID         string    `json:"medicineId"`
	Quantity           int       `json:"quantity"`
	Instructions       string    `json:"instructions,omitempty"`
	Status             string    `json:"status"`
	OrderID            string    `json:"orderId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toMedicineDTO(m *domain.Medicine) *MedicineDTO {
	return &MedicineDTO{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		CreatedAt: m.CreatedAt,
	}
}

func toOrderDTO(o *domain.Order) *OrderDTO {
	return &OrderDTO{
		ID:           o.ID,
		MedicineID:   o.MedicineID,
		Quantity:     o.Quantity,
		DeliveryDate: o.DeliveryDate,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toPrescriptionDTO(p *domain.Prescription) *PrescriptionDTO {
	return &PrescriptionDTO{
		ID:                 p.ID,
		PatientID:          p.PatientID,
		PrescriptionNumber: p.PrescriptionNumber,
		MedicineID:         p.MedicineID,
		Quantity:           p.Quantity,
		Instructions:       p.Instructions,
		Status:             string(p.Status),
		OrderID:            p.OrderID,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toPrescriptionDTOs(prescriptions []*domain.Prescription) []*PrescriptionDTO {
	dtos := make([]*PrescriptionDTO, 0, len(prescriptions))
	for _, p := range prescriptions {
		dtos = append(dtos, toPrescriptionDTO(p))
	}
	return dtos
}
