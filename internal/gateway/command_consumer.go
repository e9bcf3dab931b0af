package gateway

import (
	"context"
	"time"

	"github.com/pharmacy-platform/stock-service/internal/application"
	apperrors "github.com/pharmacy-platform/stock-service/pkg/errors"
	"github.com/pharmacy-platform/stock-service/pkg/kafka"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// Inbound command types
const (
	CommandNewPrescription = "NEW_PRESCRIPTION"
	CommandCancelled       = "CANCELLED"
)

// commandTimeout bounds a single command against a slow database or a
// contended medicine lock.
const commandTimeout = 30 * time.Second

// PrescriptionCommand is the payload of an inbound prescription
// command. PrescriptionID is the external prescription number.
type PrescriptionCommand struct {
	EventType      string `json:"eventType"`
	PrescriptionID string `json:"prescriptionId"`
	PatientID      string `json:"patientId"`
	MedicineCode   string `json:"medicineCode"`
	Quantity       int    `json:"quantity"`
	Instructions   string `json:"instructions"`
}

// CommandConsumer drains the prescription command topic. Commands are
// handed to per-key ordered workers, keyed by medicine code, so
// commands touching one medicine apply in arrival order while different
// medicines reconcile in parallel.
type CommandConsumer struct {
	consumer      *kafka.InstrumentedConsumer
	prescriptions *application.PrescriptionService
	dispatcher    *Dispatcher
	logger        *logging.Logger
}

// NewCommandConsumer creates the consumer and registers its subscriptions
func NewCommandConsumer(
	consumer *kafka.InstrumentedConsumer,
	prescriptions *application.PrescriptionService,
	workers int,
	logger *logging.Logger,
) *CommandConsumer {
	c := &CommandConsumer{
		consumer:      consumer,
		prescriptions: prescriptions,
		dispatcher:    NewDispatcher(workers, 64),
		logger:        logger.WithComponent("command-consumer"),
	}
	consumer.SubscribeAll(kafka.Topics.PrescriptionCommands, c.handle)
	return c
}

// Start blocks consuming until the context is cancelled
func (c *CommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close shuts down the consumer, then drains the in-flight commands
func (c *CommandConsumer) Close() error {
	err := c.consumer.Close()
	c.dispatcher.Close()
	return err
}

func (c *CommandConsumer) handle(ctx context.Context, envelope *kafka.Envelope) error {
	var cmd PrescriptionCommand
	if err := envelope.DecodeData(&cmd); err != nil {
		// Redelivery cannot fix a malformed command; drop it.
		c.logger.WithContext(ctx).WithError(err).Error("Dropping malformed prescription command",
			"eventId", envelope.ID,
		)
		return nil
	}

	eventType := envelope.Type
	if eventType == "" {
		eventType = cmd.EventType
	}

	key := cmd.MedicineCode
	if key == "" {
		key = cmd.PrescriptionID
	}
	if key == "" {
		key = envelope.Subject
	}

	correlationID := envelope.CorrelationID
	return c.dispatcher.Dispatch(ctx, key, func() {
		c.process(eventType, correlationID, cmd)
	})
}

func (c *CommandConsumer) process(eventType, correlationID string, cmd PrescriptionCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if correlationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	}

	var err error
	switch eventType {
	case CommandNewPrescription:
		_, err = c.prescriptions.Create(ctx, application.CreatePrescriptionCommand{
			PatientID:          cmd.PatientID,
			PrescriptionNumber: cmd.PrescriptionID,
			MedicineCode:       cmd.MedicineCode,
			Quantity:           cmd.Quantity,
			Instructions:       cmd.Instructions,
		})
	case CommandCancelled:
		_, err = c.prescriptions.CancelByNumber(ctx, cmd.PrescriptionID)
	default:
		c.logger.Warn("Unknown prescription command", "eventType", eventType)
		return
	}

	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			c.logger.WithContext(ctx).Warn("Prescription command rejected",
				"eventType", eventType,
				"prescriptionNumber", cmd.PrescriptionID,
				"code", appErr.Code,
				"error", appErr.Message,
			)
			return
		}
		c.logger.WithContext(ctx).WithError(err).Error("Prescription command failed",
			"eventType", eventType,
			"prescriptionNumber", cmd.PrescriptionID,
		)
	}
}
