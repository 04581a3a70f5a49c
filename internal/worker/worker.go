package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"todo-sync/internal/models"
	"todo-sync/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Handler receives each decoded todo event.
type Handler func(ctx context.Context, event models.TodoEvent) error

// fetchBackoff is the pause after a failed fetch.
const fetchBackoff = 500 * time.Millisecond

// messageReader is the part of *kafka.Reader the loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Run consumes the todo events topic until ctx is done and returns the
// number of events handled. Consumers sharing groupID split the partitions.
func Run(ctx context.Context, brokers []string, topic, groupID string, handle Handler) (int64, error) {
	if len(brokers) == 0 {
		return 0, fmt.Errorf("no Kafka brokers configured")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", topic, "group", groupID)
	return consume(ctx, reader, handle, fetchBackoff), nil
}

func consume(ctx context.Context, reader messageReader, handle Handler, backoff time.Duration) int64 {
	var processed int64
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return atomic.LoadInt64(&processed)
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			select {
			case <-ctx.Done():
				return atomic.LoadInt64(&processed)
			case <-time.After(backoff):
			}
			continue
		}
		if err := HandleMessage(ctx, msg.Value, handle); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		atomic.AddInt64(&processed, 1)
	}
}

// HandleMessage decodes one payload and dispatches it. Unknown actions are
// skipped without error.
func HandleMessage(ctx context.Context, payload []byte, handle Handler) error {
	var event models.TodoEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}
	switch event.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
	default:
		logger.Debug(ctx, "Worker skipped unknown action", "action", event.Action)
		return nil
	}
	if event.ID == "" {
		return fmt.Errorf("todo event %q without id", event.Action)
	}
	return handle(ctx, event)
}

// LogEvent is a Handler that writes each event to the context logger.
func LogEvent(ctx context.Context, event models.TodoEvent) error {
	args := []any{"action", event.Action, "id", event.ID, "at", event.At}
	if event.Todo != nil {
		args = append(args, "title", event.Todo.Title, "completed", event.Todo.Completed)
	}
	logger.Info(ctx, "Todo event", args...)
	return nil
}
