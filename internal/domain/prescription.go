package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrescriptionStatus represents the lifecycle state of a prescription
type PrescriptionStatus string

const (
	PrescriptionStatusNew              PrescriptionStatus = "NEW"
	PrescriptionStatusOutOfStock       PrescriptionStatus = "OUT_OF_STOCK"
	PrescriptionStatusAwaitingShipment PrescriptionStatus = "AWAITING_SHIPMENT"
	PrescriptionStatusStockReceived    PrescriptionStatus = "STOCK_RECEIVED"
	PrescriptionStatusFilled           PrescriptionStatus = "FILLED"
	PrescriptionStatusPickedUp         PrescriptionStatus = "PICKED_UP"
	PrescriptionStatusCancelled        PrescriptionStatus = "CANCELLED"
)

// IsValid checks if the prescription status is a known value
func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case PrescriptionStatusNew, PrescriptionStatusOutOfStock,
		PrescriptionStatusAwaitingShipment, PrescriptionStatusStockReceived,
		PrescriptionStatusFilled, PrescriptionStatusPickedUp,
		PrescriptionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s PrescriptionStatus) IsTerminal() bool {
	return s == PrescriptionStatusPickedUp || s == PrescriptionStatusCancelled
}

// prescriptionTransitions enumerates the legal status changes.
// Cancellation is handled separately by Cancel.
var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionStatusNew: {
		PrescriptionStatusFilled,
		PrescriptionStatusOutOfStock,
		PrescriptionStatusAwaitingShipment,
	},
	PrescriptionStatusOutOfStock: {
		PrescriptionStatusAwaitingShipment,
		PrescriptionStatusStockReceived,
	},
	PrescriptionStatusAwaitingShipment: {
		PrescriptionStatusStockReceived,
		PrescriptionStatusOutOfStock,
	},
	PrescriptionStatusStockReceived: {
		PrescriptionStatusFilled,
		PrescriptionStatusOutOfStock,
	},
	PrescriptionStatusFilled: {
		PrescriptionStatusPickedUp,
	},
}

// Prescription is the aggregate root for a patient's medicine request.
// OrderID links the prescription to the purchase order it is waiting
// on; the link is kept after the order arrives as a historical record.
type Prescription struct {
	ID                 string             `bson:"_id"`
	PatientID          string             `bson:"patientId"`
	PrescriptionNumber string             `bson:"prescriptionNumber"`
	MedicineID         string             `bson:"medicineId"`
	Quantity           int                `bson:"quantity"`
	Instructions       string             `bson:"instructions,omitempty"`
	Status             PrescriptionStatus `bson:"status"`
	OrderID            string             `bson:"orderId,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`

	DomainEvents []DomainEvent `bson:"-"`
}

// NewPrescription creates a prescription in NEW status and records a
// RECEIVED event. The admission check in the application layer may move
// it to OUT_OF_STOCK before the first save.
func NewPrescription(patientID, prescriptionNumber, medicineID string, quantity int, instructions string) (*Prescription, error) {
	if patientID == "" {
		return nil, ErrMissingPatient
	}
	if prescriptionNumber == "" {
		return nil, ErrMissingNumber
	}
	if medicineID == "" {
		return nil, ErrMissingMedicine
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now().UTC()

	p := &Prescription{
		ID:                 uuid.New().String(),
		PatientID:          patientID,
		PrescriptionNumber: prescriptionNumber,
		MedicineID:         medicineID,
		Quantity:           quantity,
		Instructions:       instructions,
		Status:             PrescriptionStatusNew,
		CreatedAt:          now,
		UpdatedAt:          now,
		DomainEvents:       make([]DomainEvent, 0),
	}

	p.addEvent(&PrescriptionReceivedEvent{
		PrescriptionNumber: prescriptionNumber,
		ReceivedAt:         now,
	})

	return p, nil
}

// CanTransitionTo reports whether the status change is legal.
func (p *Prescription) CanTransitionTo(target PrescriptionStatus) bool {
	for _, allowed := range prescriptionTransitions[p.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the prescription to the target status, guarding
// legality against the transition table.
func (p *Prescription) TransitionTo(target PrescriptionStatus) error {
	if !p.CanTransitionTo(target) {
		return &InvalidTransitionError{From: p.Status, To: target}
	}

	p.Status = target
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkOutOfStock flags the prescription as unfillable with current stock.
func (p *Prescription) MarkOutOfStock() error {
	return p.TransitionTo(PrescriptionStatusOutOfStock)
}

// AssignOrder links the prescription to a replenishment order and moves
// it to AWAITING_SHIPMENT, recording a BACK_ORDERED event carrying the
// expected delivery date.
func (p *Prescription) AssignOrder(orderID string, deliveryDate time.Time) error {
	if orderID == "" {
		return ErrMissingOrder
	}
	if err := p.TransitionTo(PrescriptionStatusAwaitingShipment); err != nil {
		return err
	}

	p.OrderID = orderID
	p.addEvent(&PrescriptionBackOrderedEvent{
		PrescriptionNumber: p.PrescriptionNumber,
		OrderID:            orderID,
		DeliveryDate:       deliveryDate,
		BackOrderedAt:      p.UpdatedAt,
	})
	return nil
}

// MarkStockReceived flags the prescription as fillable after a delivery.
func (p *Prescription) MarkStockReceived() error {
	return p.TransitionTo(PrescriptionStatusStockReceived)
}

// Fill marks the prescription as filled and records a FILLED event.
// The caller is responsible for decrementing stock first.
func (p *Prescription) Fill() error {
	if err := p.TransitionTo(PrescriptionStatusFilled); err != nil {
		return err
	}

	p.addEvent(&PrescriptionFilledEvent{
		PrescriptionNumber: p.PrescriptionNumber,
		FilledAt:           p.UpdatedAt,
	})
	return nil
}

// PickUp marks the prescription as handed to the patient.
func (p *Prescription) PickUp() error {
	if err := p.TransitionTo(PrescriptionStatusPickedUp); err != nil {
		return err
	}

	p.addEvent(&PrescriptionPickedUpEvent{
		PrescriptionNumber: p.PrescriptionNumber,
		PickedUpAt:         p.UpdatedAt,
	})
	return nil
}

// Cancel moves the prescription to CANCELLED. Legal from any
// non-terminal status.
func (p *Prescription) Cancel() error {
	if p.Status.IsTerminal() {
		return &InvalidTransitionError{From: p.Status, To: PrescriptionStatusCancelled}
	}

	p.Status = PrescriptionStatusCancelled
	p.UpdatedAt = time.Now().UTC()
	p.addEvent(&PrescriptionCancelledEvent{
		PrescriptionNumber: p.PrescriptionNumber,
		CancelledAt:        p.UpdatedAt,
	})
	return nil
}

// ClearEvents returns the recorded events and empties the buffer.
func (p *Prescription) ClearEvents() []DomainEvent {
	events := p.DomainEvents
	p.DomainEvents = make([]DomainEvent, 0)
	return events
}

func (p *Prescription) addEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}
