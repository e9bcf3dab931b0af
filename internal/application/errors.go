package application

import (
	"errors"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
)

// mapDomainError translates domain sentinels into transport-level
// errors with stable codes. Each sentinel is matched explicitly;
// anything unmapped passes through and surfaces as an internal error
// at the edge.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case domain.IsInvalidTransition(err):
		return apperrors.ErrInvalidTransition(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrOrderAlreadyReceived):
		return apperrors.ErrInvalidTransition(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return apperrors.ErrInvalidAdjustment(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrDuplicateNumber):
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrMissingMedicine),
		errors.Is(err, domain.ErrMissingNumber),
		errors.Is(err, domain.ErrMissingPatient),
		errors.Is(err, domain.ErrMissingOrder),
		errors.Is(err, domain.ErrMissingCode),
		errors.Is(err, domain.ErrMissingName),
		errors.Is(err, domain.ErrMissingDeliveryDate):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	default:
		return err
	}
}
