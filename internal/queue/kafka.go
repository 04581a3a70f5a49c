package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"todo-sync/internal/models"
	"todo-sync/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher announces todo changes. Publishing is best effort: the store
// stays the source of truth whether or not an event goes out.
type Publisher interface {
	Publish(ctx context.Context, event models.TodoEvent) error
	Close() error
}

// EnsureTopic creates the events topic with configured partitions (idempotent).
// Call at startup; if it fails (e.g. no broker or topic exists), app still runs.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int) {
	if len(brokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic, "partitions", partitions)
}

// Kafka publishes events with an async writer keyed by todo id, so all
// events for one todo land on the same partition in order.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka builds the producer. No connection is made until the first write.
func NewKafka(ctx context.Context, brokers []string, topic string) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn(context.Background(), "Kafka delivery failed", "error", err, "messages", len(messages))
			}
		},
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", topic, "brokers", brokers)
	return &Kafka{writer: w}
}

// Publish encodes and enqueues an event. Non-blocking with the async writer.
func (k *Kafka) Publish(ctx context.Context, event models.TodoEvent) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Encode turns an event into a Kafka message.
func Encode(event models.TodoEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal todo event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
	}, nil
}

// Nop is the Publisher used when KAFKA_BROKERS is not set.
type Nop struct{}

func (Nop) Publish(context.Context, models.TodoEvent) error { return nil }
func (Nop) Close() error                                   { return nil }
