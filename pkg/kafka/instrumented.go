package kafka

import (
	"context"
	"time"

	"github.com/pharmacy-platform/stock-service/pkg/logging"
	"github.com/pharmacy-platform/stock-service/pkg/metrics"
)

// InstrumentedProducer wraps a Producer with metrics and logging
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedProducer creates a new instrumented producer
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// PublishEnvelope publishes an envelope, recording outcome and latency
func (p *InstrumentedProducer) PublishEnvelope(ctx context.Context, topic string, envelope *Envelope) error {
	start := time.Now()

	err := p.producer.PublishEnvelope(ctx, topic, envelope)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, envelope.Type, success, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, envelope.Type, success, duration)
	}

	return err
}

// PublishBatch publishes multiple envelopes, recording per-event metrics
func (p *InstrumentedProducer) PublishBatch(ctx context.Context, topic string, envelopes []*Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	start := time.Now()

	err := p.producer.PublishBatch(ctx, topic, envelopes)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil {
		perEvent := duration / time.Duration(len(envelopes))
		for _, envelope := range envelopes {
			p.metrics.RecordKafkaPublish(topic, envelope.Type, success, perEvent)
		}
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}

// InstrumentedConsumer wraps a Consumer with metrics and logging
type InstrumentedConsumer struct {
	consumer *Consumer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedConsumer creates a new instrumented consumer
func NewInstrumentedConsumer(consumer *Consumer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedConsumer {
	return &InstrumentedConsumer{
		consumer: consumer,
		metrics:  m,
		logger:   logger,
	}
}

// Subscribe subscribes to a topic with an instrumented handler
func (c *InstrumentedConsumer) Subscribe(topic string, eventType string, handler EventHandler) {
	c.consumer.Subscribe(topic, eventType, c.instrumentHandler(topic, handler))
}

// SubscribeAll subscribes to all event types with an instrumented handler
func (c *InstrumentedConsumer) SubscribeAll(topic string, handler EventHandler) {
	c.consumer.SubscribeAll(topic, c.instrumentHandler(topic, handler))
}

func (c *InstrumentedConsumer) instrumentHandler(topic string, handler EventHandler) EventHandler {
	return func(ctx context.Context, envelope *Envelope) error {
		if envelope.CorrelationID != "" {
			ctx = logging.ContextWithCorrelationID(ctx, envelope.CorrelationID)
		}

		err := handler(ctx, envelope)

		if c.metrics != nil {
			c.metrics.RecordKafkaConsume(topic, envelope.Type, err == nil)
		}
		if c.logger != nil {
			c.logger.KafkaConsume(ctx, topic, envelope.Type, 0, 0)
		}

		return err
	}
}

// Start starts the instrumented consumer
func (c *InstrumentedConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close closes the underlying consumer
func (c *InstrumentedConsumer) Close() error {
	return c.consumer.Close()
}
