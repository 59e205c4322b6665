package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Publisher is what the services publish lifecycle messages through. Delivery
// is best effort; callers log failures and carry on.
type Publisher interface {
	Publish(topic, key string, value []byte) error
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher drops every message. Used when KAFKA_ENABLED=false.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic, key string, value []byte) error {
	return nil
}
