package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"train-station/internal/logger"
	"train-station/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Topics struct {
	OrderCreated string
	OrderDeleted string
}

// Producer publishes order events keyed by order id, so all events of one order land on
// the same partition.
type Producer struct {
	writer messageWriter
	topics Topics
	log    *logger.Logger
}

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, topics: topics, log: log}
}

func (p *Producer) PublishOrderCreated(ctx context.Context, order models.Order) error {
	return p.publish(ctx, p.topics.OrderCreated, NewOrderEvent(EventOrderCreated, order))
}

func (p *Producer) PublishOrderDeleted(ctx context.Context, order models.Order) error {
	return p.publish(ctx, p.topics.OrderDeleted, NewOrderEvent(EventOrderDeleted, order))
}

func (p *Producer) publish(ctx context.Context, topic string, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(event.Order.ID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	p.log.LogKafka("PUBLISH", topic, fmt.Sprintf("order %d (%s)", event.Order.ID, event.EventID))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, models.Order) error { return nil }
func (NoopPublisher) PublishOrderDeleted(context.Context, models.Order) error { return nil }
