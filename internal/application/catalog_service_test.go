package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
)

func TestCatalogService_Create(t *testing.T) {
	svc := NewCatalogService(newMemCatalog(), newTestLogger())

	dto, err := svc.Create(context.Background(), CreateMedicineCommand{
		Name: "Amoxicillin",
		Code: "amx-500",
	})
	require.NoError(t, err)
	assert.Equal(t, "AMX-500", dto.Code)

	_, err = svc.Create(context.Background(), CreateMedicineCommand{
		Name: "Amoxicillin forte",
		Code: "AMX-500",
	})
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestCatalogService_Create_Validation(t *testing.T) {
	svc := NewCatalogService(newMemCatalog(), newTestLogger())

	_, err := svc.Create(context.Background(), CreateMedicineCommand{Code: "AMX"})
	assertAppErrorCode(t, err, apperrors.CodeValidationError)

	_, err = svc.Create(context.Background(), CreateMedicineCommand{Name: "Amoxicillin"})
	assertAppErrorCode(t, err, apperrors.CodeValidationError)
}

func TestCatalogService_GetByCode(t *testing.T) {
	svc := NewCatalogService(newMemCatalog(), newTestLogger())

	created, err := svc.Create(context.Background(), CreateMedicineCommand{
		Name: "Ibuprofen",
		Code: "IBU-200",
	})
	require.NoError(t, err)

	found, err := svc.GetByCode(context.Background(), "ibu-200")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByCode(context.Background(), "missing")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	_, err = svc.Get(context.Background(), "missing")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}
