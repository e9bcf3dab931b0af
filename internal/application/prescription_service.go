package application

import (
	"context"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// PrescriptionService exposes the prescription lifecycle. Admission,
// fill, pick-up and cancellation all delegate to the reconciliation
// engine so the same rules apply whether a request arrives over REST or
// through the event gateway.
type PrescriptionService struct {
	prescriptions domain.PrescriptionRepository
	recon         *ReconciliationService
	logger        *logging.Logger
}

// NewPrescriptionService creates a new prescription service
func NewPrescriptionService(prescriptions domain.PrescriptionRepository, recon *ReconciliationService, logger *logging.Logger) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		recon:         recon,
		logger:        logger.WithComponent("prescription-service"),
	}
}

// Create admits a prescription via the engine
func (s *PrescriptionService) Create(ctx context.Context, cmd CreatePrescriptionCommand) (*PrescriptionDTO, error) {
	return s.recon.AddPrescription(ctx, cmd)
}

// Get returns a prescription by id
func (s *PrescriptionService) Get(ctx context.Context, id string) (*PrescriptionDTO, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFoundWithID("prescription", id)
	}
	return toPrescriptionDTO(p), nil
}

// GetByNumber returns a prescription by its number
func (s *PrescriptionService) GetByNumber(ctx context.Context, number string) (*PrescriptionDTO, error) {
	p, err := s.prescriptions.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFound("prescription").WithDetail("prescriptionNumber", number)
	}
	return toPrescriptionDTO(p), nil
}

// List returns all prescriptions, or only the non-terminal ones when
// activeOnly is set
func (s *PrescriptionService) List(ctx context.Context, activeOnly bool) ([]*PrescriptionDTO, error) {
	var (
		prescriptions []*domain.Prescription
		err           error
	)
	if activeOnly {
		prescriptions, err = s.prescriptions.FindActive(ctx)
	} else {
		prescriptions, err = s.prescriptions.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return toPrescriptionDTOs(prescriptions), nil
}

// UpdateStatus drives the externally requestable transitions. Only
// FILLED and PICKED_UP may be requested directly; the remaining states
// are owned by the reconciliation engine.
func (s *PrescriptionService) UpdateStatus(ctx context.Context, cmd UpdatePrescriptionStatusCommand) (*PrescriptionDTO, error) {
	status := domain.PrescriptionStatus(cmd.Status)
	if !status.IsValid() {
		return nil, apperrors.ErrValidation("unknown prescription status").
			WithDetail("status", cmd.Status)
	}

	switch status {
	case domain.PrescriptionStatusFilled:
		return s.recon.FillPrescription(ctx, cmd.ID)
	case domain.PrescriptionStatusPickedUp:
		return s.recon.PickUpPrescription(ctx, cmd.ID)
	default:
		return nil, apperrors.ErrValidation("status cannot be requested directly").
			WithDetail("status", cmd.Status)
	}
}

// Cancel cancels a prescription by id
func (s *PrescriptionService) Cancel(ctx context.Context, id string) (*PrescriptionDTO, error) {
	return s.recon.CancelPrescription(ctx, id)
}

// CancelByNumber cancels a prescription by its number
func (s *PrescriptionService) CancelByNumber(ctx context.Context, number string) (*PrescriptionDTO, error) {
	return s.recon.CancelByNumber(ctx, number)
}
