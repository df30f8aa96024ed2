package repository

import (
	"context"

	"AllocDesk/internal/domain/models"
	pkgkafka "AllocDesk/pkg/kafka"
)

// KafkaDecisionPublisher pushes rebalance records onto a Kafka topic so
// downstream consumers (notifiers, archives) can react to new decisions.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaDecisionPublisher creates the publisher.
func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

// Publish sends the record keyed by its timestamp so a partition keeps the
// decisions of a day together.
func (p *KafkaDecisionPublisher) Publish(ctx context.Context, rec models.RebalanceRecord) error {
	key := []byte(rec.Timestamp.UTC().Format("2006-01-02"))
	return p.producer.Publish(ctx, p.topic, key, rec)
}

// PublishMessage lets the publisher double as a sink for aggregated error
// logs (logger.Publisher).
func (p *KafkaDecisionPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, []byte("logs"), payload)
}

// Close closes the underlying producer.
func (p *KafkaDecisionPublisher) Close() error {
	return p.producer.Close()
}
