package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer handles publishing messages to Kafka topics
type Producer struct {
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

// getWriter returns a writer for the specified topic, creating one if necessary.
// The hash balancer keeps all messages with the same key on one
// partition, which is what preserves per-subject ordering.
func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}

	p.writers[topic] = writer
	return writer
}

func envelopeToMessage(envelope *Envelope) (kafka.Message, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(envelope.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(envelope.Type)},
			{Key: "event-source", Value: []byte(envelope.Source)},
			{Key: "event-id", Value: []byte(envelope.ID)},
			{Key: "event-time", Value: []byte(envelope.Time.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: envelope.Time,
	}

	if envelope.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key:   "correlation-id",
			Value: []byte(envelope.CorrelationID),
		})
	}

	return msg, nil
}

// PublishEnvelope publishes a single envelope to the specified topic
func (p *Producer) PublishEnvelope(ctx context.Context, topic string, envelope *Envelope) error {
	msg, err := envelopeToMessage(envelope)
	if err != nil {
		return err
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}

	return nil
}

// PublishBatch publishes multiple envelopes to a topic in one write
func (p *Producer) PublishBatch(ctx context.Context, topic string, envelopes []*Envelope) error {
	messages := make([]kafka.Message, 0, len(envelopes))

	for _, envelope := range envelopes {
		msg, err := envelopeToMessage(envelope)
		if err != nil {
			return fmt.Errorf("envelope %s: %w", envelope.ID, err)
		}
		messages = append(messages, msg)
	}

	if err := p.getWriter(topic).WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish batch to topic %s: %w", topic, err)
	}

	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
