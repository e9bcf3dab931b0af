package domain

import "time"

// Outbound event types, as they appear on the wire.
const (
	EventTypeReceived    = "RECEIVED"
	EventTypeBackOrdered = "BACK_ORDERED"
	EventTypeFilled      = "FILLED"
	EventTypePickedUp    = "PICKED_UP"
	EventTypeCancelled   = "CANCELLED"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// PrescriptionEvent is implemented by events that belong to a single
// prescription; the gateway uses the number as the partition key.
type PrescriptionEvent interface {
	DomainEvent
	Prescription() string
}

// PrescriptionReceivedEvent is published when a prescription enters the system
type PrescriptionReceivedEvent struct {
	PrescriptionNumber string    `json:"prescriptionNumber"`
	ReceivedAt         time.Time `json:"receivedAt"`
}

func (e *PrescriptionReceivedEvent) EventType() string     { return EventTypeReceived }
func (e *PrescriptionReceivedEvent) OccurredAt() time.Time { return e.ReceivedAt }
func (e *PrescriptionReceivedEvent) Prescription() string  { return e.PrescriptionNumber }

// PrescriptionBackOrderedEvent is published when a prescription is linked
// to a replenishment order; DeliveryDate tells the patient when to expect stock
type PrescriptionBackOrderedEvent struct {
	PrescriptionNumber string    `json:"prescriptionNumber"`
	OrderID            string    `json:"orderId"`
	DeliveryDate       time.Time `json:"deliveryDate"`
	BackOrderedAt      time.Time `json:"backOrderedAt"`
}

func (e *PrescriptionBackOrderedEvent) EventType() string     { return EventTypeBackOrdered }
func (e *PrescriptionBackOrderedEvent) OccurredAt() time.Time { return e.BackOrderedAt }
func (e *PrescriptionBackOrderedEvent) Prescription() string  { return e.PrescriptionNumber }

// PrescriptionFilledEvent is published when a prescription is filled
type PrescriptionFilledEvent struct {
	PrescriptionNumber string    `json:"prescriptionNumber"`
	FilledAt           time.Time `json:"filledAt"`
}

func (e *PrescriptionFilledEvent) EventType() string     { return EventTypeFilled }
func (e *PrescriptionFilledEvent) OccurredAt() time.Time { return e.FilledAt }
func (e *PrescriptionFilledEvent) Prescription() string  { return e.PrescriptionNumber }

// PrescriptionPickedUpEvent is published when the patient collects the medicine
type PrescriptionPickedUpEvent struct {
	PrescriptionNumber string    `json:"prescriptionNumber"`
	PickedUpAt         time.Time `json:"pickedUpAt"`
}

func (e *PrescriptionPickedUpEvent) EventType() string     { return EventTypePickedUp }
func (e *PrescriptionPickedUpEvent) OccurredAt() time.Time { return e.PickedUpAt }
func (e *PrescriptionPickedUpEvent) Prescription() string  { return e.PrescriptionNumber }

// PrescriptionCancelledEvent is published when a prescription is cancelled
type PrescriptionCancelledEvent struct {
	PrescriptionNumber string    `json:"prescriptionNumber"`
	CancelledAt        time.Time `json:"cancelledAt"`
}

func (e *PrescriptionCancelledEvent) EventType() string     { return EventTypeCancelled }
func (e *PrescriptionCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }
func (e *PrescriptionCancelledEvent) Prescription() string  { return e.PrescriptionNumber }
