package proctoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer handles sending notification events to Kafka.
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a new Kafka writer for notification events.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish sends one notification event to the topic, keyed by exam so
// per-exam ordering is preserved for observers.
func (p *Producer) Publish(ctx context.Context, key string, event NotificationEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.EventTime.IsZero() {
		event.EventTime = time.Now().UTC()
	}
	if event.SchemaVersion == "" {
		event.SchemaVersion = "v1"
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Close cleans up the Kafka writer.
func (p *Producer) Close() error {
	return p.Writer.Close()
}
