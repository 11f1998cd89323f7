package infra

import (
	"fmt"
	"net"
	"time"

	"github.com/IBM/sarama"
)

// NewKafkaProducer builds a synchronous Kafka producer for the given broker.
// It waits for the broker to accept TCP connections first so the service can
// start alongside Kafka in a compose environment.
func NewKafkaProducer(broker string, readyTimeout time.Duration) (sarama.SyncProducer, error) {
	if broker == "" {
		return nil, fmt.Errorf("kafka broker is required")
	}

	if !waitForBroker(broker, readyTimeout) {
		return nil, fmt.Errorf("kafka broker %s not ready after %s", broker, readyTimeout)
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer([]string{broker}, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}

	return producer, nil
}

// NewKafkaConsumerGroup builds a consumer group bound to the given broker.
func NewKafkaConsumerGroup(broker, group string) (sarama.ConsumerGroup, error) {
	if broker == "" {
		return nil, fmt.Errorf("kafka broker is required")
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumer, err := sarama.NewConsumerGroup([]string{broker}, group, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect kafka consumer group: %w", err)
	}

	return consumer, nil
}

func waitForBroker(broker string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", broker, 5*time.Second)
		if err == nil {
			conn.Close()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Second)
	}
}
