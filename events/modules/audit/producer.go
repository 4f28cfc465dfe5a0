// Package audit handles Kafka event production for bulk operation audit events.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/qed-utility/portal-backend/model"
)

// Producer handles sending bulk operation events to Kafka. A nil Producer
// is valid and publishes nothing, for deployments without a broker.
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a new Kafka writer for audit events
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishBulkOperation sends the event to the Kafka topic
func (p *Producer) PublishBulkOperation(ctx context.Context, entry model.AuditEntry) error {
	if p == nil {
		return nil
	}

	event := BulkOperationEvent{
		EventType:     "portal.bulk." + entry.Operation,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Entry:         entry,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.Username),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	if p == nil || p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
