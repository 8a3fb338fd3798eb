package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"telegram-task-relay/internal/relay"
	pkgLog "telegram-task-relay/pkg/log"
)

// Consumer feeds task results published to a Kafka topic into the same callback path as
// POST /callback.
type Consumer struct {
	l        pkgLog.Logger
	uc       relay.UseCase
	consumer sarama.Consumer
	topic    string
	offset   int64
}

// New creates a result consumer reading topic from the newest offset.
func New(l pkgLog.Logger, uc relay.UseCase, consumer sarama.Consumer, topic string) (*Consumer, error) {
	if consumer == nil {
		return nil, errors.New("kafka consumer is required")
	}
	if topic == "" {
		return nil, errors.New("result topic is required")
	}
	return &Consumer{
		l:        l,
		uc:       uc,
		consumer: consumer,
		topic:    topic,
		offset:   sarama.OffsetNewest,
	}, nil
}

// Run consumes every partition until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	partitions, err := c.consumer.Partitions(c.topic)
	if err != nil {
		return fmt.Errorf("list partitions of %s: %w", c.topic, err)
	}

	var wg sync.WaitGroup
	for _, partition := range partitions {
		pc, err := c.consumer.ConsumePartition(c.topic, partition, c.offset)
		if err != nil {
			c.l.Errorf(ctx, "relay.delivery.kafka: consume %s/%d: %v", c.topic, partition, err)
			continue
		}

		wg.Add(1)
		go func(pc sarama.PartitionConsumer) {
			defer wg.Done()
			defer pc.AsyncClose()
			c.consume(ctx, pc)
		}(pc)
	}

	c.l.Infof(ctx, "relay.delivery.kafka: consuming %d partition(s) of %s", len(partitions), c.topic)
	wg.Wait()
	return nil
}

func (c *Consumer) consume(ctx context.Context, pc sarama.PartitionConsumer) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pc.Messages():
			if !ok {
				return
			}
			c.handleMessage(ctx, msg)
		case cerr, ok := <-pc.Errors():
			if ok {
				c.l.Warnf(ctx, "relay.delivery.kafka: %v", cerr)
			}
		}
	}
}

// handleMessage never stops the loop: bad messages are logged and skipped.
func (c *Consumer) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) {
	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		c.l.Warnf(ctx, "relay.delivery.kafka: skipping undecodable message at %d/%d: %v", msg.Partition, msg.Offset, err)
		return
	}
	// The producer keys results by request ID; use it when the body omits one.
	if relay.ExtractRequestID(body) == "" && len(msg.Key) > 0 {
		body["requestId"] = string(msg.Key)
	}

	out, err := c.uc.HandleCallback(ctx, relay.CallbackInput{Body: body})
	if err != nil {
		c.l.Warnf(ctx, "relay.delivery.kafka: message at %d/%d: %v", msg.Partition, msg.Offset, err)
		return
	}
	c.l.Infof(ctx, "relay.delivery.kafka: %s -> %s", out.RequestID, out.Status)
}
