package repository

import (
	"context"
	"fmt"

	"TechScreen/internal/domain/models"
	domrepo "TechScreen/internal/domain/repository"
	pkgkafka "TechScreen/pkg/kafka"
)

// KafkaSignalPublisher pushes each selection onto a topic so downstream
// consumers (execution, alerting) see new signals without polling. Messages
// are keyed by instrument for per-symbol ordering.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

// WriteReport publishes every signal of the selection as one batch.
func (p *KafkaSignalPublisher) WriteReport(ctx context.Context, result models.SelectionResult) error {
	signals := result.Ordered()
	msgs := make([]pkgkafka.Message, 0, len(signals))
	for _, sig := range signals {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(sig.Instrument),
			Value: sig,
		})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish %s signals: %w", result.AssetClass, err)
	}
	return nil
}

var _ domrepo.ReportSink = (*KafkaSignalPublisher)(nil)
