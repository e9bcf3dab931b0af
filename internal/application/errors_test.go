package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"invalid transition", &domain.InvalidTransitionError{
			From: domain.PrescriptionStatusFilled,
			To:   domain.PrescriptionStatusNew,
		}, apperrors.CodeInvalidTransition},
		{"order already received", domain.ErrOrderAlreadyReceived, apperrors.CodeInvalidTransition},
		{"insufficient stock", domain.ErrInsufficientStock, apperrors.CodeInvalidAdjustment},
		{"duplicate number", domain.ErrDuplicateNumber, apperrors.CodeConflict},
		{"invalid quantity", domain.ErrInvalidQuantity, apperrors.CodeValidationError},
		{"negative stock", domain.ErrNegativeStock, apperrors.CodeValidationError},
		{"missing medicine", domain.ErrMissingMedicine, apperrors.CodeValidationError},
		{"missing number", domain.ErrMissingNumber, apperrors.CodeValidationError},
		{"missing patient", domain.ErrMissingPatient, apperrors.CodeValidationError},
		{"missing order", domain.ErrMissingOrder, apperrors.CodeValidationError},
		{"missing code", domain.ErrMissingCode, apperrors.CodeValidationError},
		{"missing name", domain.ErrMissingName, apperrors.CodeValidationError},
		{"missing delivery date", domain.ErrMissingDeliveryDate, apperrors.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapDomainError(tt.err)
			appErr, ok := apperrors.AsAppError(mapped)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestMapDomainError_PassThrough(t *testing.T) {
	assert.NoError(t, mapDomainError(nil))

	// AppErrors pass through untouched
	appErr := apperrors.ErrNotFound("medicine")
	assert.Same(t, appErr, mapDomainError(appErr).(*apperrors.AppError))

	// unmapped errors surface unchanged and become internal at the edge
	unmapped := errors.New("connection reset")
	assert.Equal(t, unmapped, mapDomainError(unmapped))
}
