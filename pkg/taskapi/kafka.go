package taskapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// KafkaDispatcher publishes dispatch requests to a topic, keyed by request ID so every
// message for one request lands on the same partition.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaDispatcher wraps an existing producer.
func NewKafkaDispatcher(producer sarama.SyncProducer, topic string) (*KafkaDispatcher, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka dispatch topic is required")
	}
	return &KafkaDispatcher{producer: producer, topic: topic}, nil
}

// Dispatch publishes req. The producer call itself is synchronous; ctx is only checked up front.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, req DispatchRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.RequestID == "" {
		return fmt.Errorf("request ID is required")
	}
	if req.MaxIterations <= 0 {
		req.MaxIterations = DefaultMaxIterations
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(req.RequestID),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := d.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish dispatch request: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
