package application

import (
	"context"
	"strings"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// CatalogService manages the medicine catalog
type CatalogService struct {
	catalog domain.CatalogRepository
	logger  *logging.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog domain.CatalogRepository, logger *logging.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger.WithComponent("catalog-service"),
	}
}

// Create registers a medicine. Codes are unique; a duplicate is a conflict.
func (s *CatalogService) Create(ctx context.Context, cmd CreateMedicineCommand) (*MedicineDTO, error) {
	medicine, err := domain.NewMedicine(cmd.Name, cmd.Code)
	if err != nil {
		return nil, mapDomainError(err)
	}

	existing, err := s.catalog.FindByCode(ctx, medicine.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConflict("medicine code already exists").
			WithDetail("code", medicine.Code)
	}

	if err := s.catalog.Save(ctx, medicine); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Medicine created",
		"medicineId", medicine.ID,
		"code", medicine.Code,
	)

	return toMedicineDTO(medicine), nil
}

// Get returns a medicine by id
func (s *CatalogService) Get(ctx context.Context, id string) (*MedicineDTO, error) {
	medicine, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperrors.ErrNotFoundWithID("medicine", id)
	}
	return toMedicineDTO(medicine), nil
}

// GetByCode returns a medicine by its catalog code
func (s *CatalogService) GetByCode(ctx context.Context, code string) (*MedicineDTO, error) {
	medicine, err := s.catalog.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, apperrors.ErrNotFound("medicine").WithDetail("code", code)
	}
	return toMedicineDTO(medicine), nil
}

// List returns all medicines
func (s *CatalogService) List(ctx context.Context) ([]*MedicineDTO, error) {
	medicines, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]*MedicineDTO, 0, len(medicines))
	for _, m := range medicines {
		dtos = append(dtos, toMedicineDTO(m))
	}
	return dtos, nil
}
