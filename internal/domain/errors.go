package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the aggregates
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrNegativeStock        = errors.New("initial stock quantity cannot be negative")
	ErrInsufficientStock    = errors.New("stock quantity cannot go below zero")
	ErrOrderAlreadyReceived = errors.New("order has already been received")
	ErrVersionConflict      = errors.New("inventory row was modified concurrently")
	ErrDuplicateNumber      = errors.New("prescription number already exists")
	ErrMissingMedicine      = errors.New("medicine id is required")
	ErrMissingNumber        = errors.New("prescription number is required")
	ErrMissingPatient       = errors.New("patient id is required")
	ErrMissingOrder         = errors.New("order id is required")
	ErrMissingCode          = errors.New("medicine code is required")
	ErrMissingName          = errors.New("medicine name is required")
	ErrMissingDeliveryDate  = errors.New("delivery date is required")
)

// InvalidTransitionError reports an illegal prescription status change,
// naming both the current and the requested status.
type InvalidTransitionError struct {
	From PrescriptionStatus
	To   PrescriptionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition prescription from %s to %s", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
