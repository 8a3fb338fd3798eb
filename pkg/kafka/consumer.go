package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
)

// NewConsumer connects a partition consumer to brokers.
func NewConsumer(brokers []string, clientID string) (sarama.Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	config := sarama.NewConfig()
	if clientID != "" {
		config.ClientID = clientID
	}
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create consumer: %w", err)
	}
	return consumer, nil
}
