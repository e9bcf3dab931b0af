package application

import "time"

// CreateMedicineCommand creates a catalog entry
type CreateMedicineCommand struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// CreateInventoryCommand creates the stock ledger for a medicine
type CreateInventoryCommand struct {
	MedicineID      string `json:"medicineId" binding:"required"`
	InitialQuantity int    `json:"initialQuantity" binding:"min=0"`
}

// AdjustStockCommand applies a signed delta to a medicine's stock
type AdjustStockCommand struct {
	MedicineID string
	Delta      int
}

// CreatePrescriptionCommand admits a prescription. The medicine may be
// referenced by id (REST) or by catalog code (inbound events); exactly
// one is required.
type CreatePrescriptionCommand struct {
	PatientID          string `json:"patientId" binding:"required"`
	PrescriptionNumber string `json:"prescriptionNumber" binding:"required"`
	MedicineID         string `json:"medicineId"`
	MedicineCode       string `json:"medicineCode"`
	Quantity           int    `json:"quantity" binding:"required,gt=0"`
	Instructions       string `json:"instructions"`
}

// CreateOrderCommand places a replenishment order
type CreateOrderCommand struct {
	MedicineID   string    `json:"medicineId" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
	DeliveryDate time.Time `json:"deliveryDate" binding:"required"`
}

// UpdatePrescriptionStatusCommand drives the fill / pick-up transitions
type UpdatePrescriptionStatusCommand struct {
	ID     string
	Status string
}
