package notifier

import (
	"encoding/json"

	"github.com/IBM/sarama"
)

// Producer publishes reminder events to Kafka. Events for the same user share
// a partition key so a user's reminders are consumed in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer wraps a sarama sync producer for the given topic.
func NewProducer(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// Publish sends one reminder event.
func (p *Producer) Publish(event ReminderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.UserID),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

// Close releases the underlying producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
