package gateway

import (
	"context"
	"fmt"

	"github.com/pharmacy-platform/stock-service/internal/domain"
	"github.com/pharmacy-platform/stock-service/pkg/kafka"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
)

// StatusPublisher pushes prescription lifecycle events onto the status
// topic. Messages are keyed by prescription number so a patient-facing
// consumer sees each prescription's events in order.
type StatusPublisher struct {
	producer *kafka.CircuitBreakerProducer
	source   string
	logger   *logging.Logger
}

// NewStatusPublisher creates a new status publisher
func NewStatusPublisher(producer *kafka.CircuitBreakerProducer, logger *logging.Logger) *StatusPublisher {
	return &StatusPublisher{
		producer: producer,
		source:   "stock-service",
		logger:   logger.WithComponent("status-publisher"),
	}
}

// Publish sends a single domain event to the status topic
func (p *StatusPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	pe, ok := event.(domain.PrescriptionEvent)
	if !ok {
		return fmt.Errorf("event %s carries no prescription subject", event.EventType())
	}

	envelope, err := kafka.NewEnvelope(event.EventType(), p.source, pe.Prescription(), event)
	if err != nil {
		return err
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		envelope.CorrelationID = id
	}

	return p.producer.PublishEnvelope(ctx, kafka.Topics.PrescriptionStatus, envelope)
}

// PublishAll sends the events one by one, preserving their order on the
// partition, and stops at the first failure
func (p *StatusPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
