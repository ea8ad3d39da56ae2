package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"race-weekend-api/internal/models"
	"race-weekend-api/internal/queue"
	"race-weekend-api/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Run starts the notification consumer: reads notification commands and
// delivers them (log delivery stands in for email/SMS). No retries;
// failures are logged and the message committed so a poison message
// never blocks the partition.
func Run(ctx context.Context) {
	brokers := queue.Brokers()
	if len(brokers) == 0 {
		logger.Info(ctx, "Notification worker disabled (no Kafka brokers)")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    queue.Topic(),
		GroupID:  "notification-workers",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var delivered int64
	logger.Info(ctx, "Notification consumer started", "topic", queue.Topic())
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := deliver(ctx, msg.Value); err != nil {
			logger.Error(ctx, "Notification delivery failed", "error", err, "payload", string(msg.Value))
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		atomic.AddInt64(&delivered, 1)
	}
}

func deliver(ctx context.Context, payload []byte) error {
	var cmd models.NotificationCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return err
	}
	switch cmd.Kind {
	case "reminder":
		logger.Info(ctx, "Reminder sent", "task_id", cmd.TaskID, "title", cmd.Title)
	case "task_created":
		logger.Info(ctx, "Task created notification sent", "task_id", cmd.TaskID, "title", cmd.Title)
	default:
		logger.Warn(ctx, "Unknown notification kind", "kind", cmd.Kind)
	}
	return nil
}
