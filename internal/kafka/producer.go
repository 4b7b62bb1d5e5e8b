package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// Keyed values choose their own partition key.
type Keyed interface {
	PartitionKey() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.ClientID = "contact-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewWithSyncProducer(producer, topic, logger), nil
}

// NewWithSyncProducer wraps an existing sarama producer (tests pass a mock).
func NewWithSyncProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Producer {
	logger.Info("kafka producer initialized", "topic", topic)

	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *Producer) SendMessage(ctx context.Context, value any) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(valueBytes),
	}
	if k, ok := value.(Keyed); ok {
		msg.Key = sarama.StringEncoder(k.PartitionKey())
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to kafka", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message sent to kafka", "topic", p.topic, "partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
