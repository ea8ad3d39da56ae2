package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"race-weekend-api/internal/config"
	"race-weekend-api/internal/models"
	"race-weekend-api/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EnsureTopic creates the notification topic with configured partitions
// (idempotent). Call at startup; if it fails the app still runs.
func EnsureTopic(ctx context.Context) {
	cfg := config.Get()
	if len(cfg.KafkaBrokers) == 0 {
		return
	}
	conn, err := kafka.Dial("tcp", cfg.KafkaBrokers[0])
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
	ctrlConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaNotifyTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", cfg.KafkaNotifyTopic, "partitions", cfg.KafkaPartitions)
}

var (
	writer *kafka.Writer
	wOnce  sync.Once
)

// Producer returns the global Kafka writer for notification commands.
// Returns nil when no brokers are configured (notifications become
// log-only no-ops).
func Producer(ctx context.Context) *kafka.Writer {
	wOnce.Do(func() {
		cfg := config.Get()
		if len(cfg.KafkaBrokers) == 0 {
			logger.Info(ctx, "Kafka disabled (no brokers configured)")
			return
		}
		writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaNotifyTopic,
			Balancer:     &kafka.LeastBytes{},
			Async:        true,
			RequiredAcks: kafka.RequireOne,
		}
		logger.Info(ctx, "Kafka producer initialized", "topic", cfg.KafkaNotifyTopic, "brokers", cfg.KafkaBrokers)
	})
	return writer
}

// PublishNotification enqueues a notification command. Fire-and-forget:
// the async writer never blocks the request path, errors are logged and
// not surfaced, and the context must be detached from request
// cancellation by the caller.
func PublishNotification(ctx context.Context, cmd *models.NotificationCommand) {
	w := Producer(ctx)
	if w == nil {
		logger.Info(ctx, "Notification (no broker)", "kind", cmd.Kind, "task_id", cmd.TaskID, "title", cmd.Title)
		return
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		logger.Error(ctx, "Marshal notification failed", "error", err)
		return
	}
	key := []byte(strconv.FormatInt(cmd.TaskID, 10))
	if err := w.WriteMessages(ctx, kafka.Message{Key: key, Value: payload}); err != nil {
		logger.Error(ctx, "Publish notification failed", "error", err, "kind", cmd.Kind)
	}
}

// Topic returns the notification topic name.
func Topic() string {
	return config.Get().KafkaNotifyTopic
}

// Brokers returns Kafka broker addresses.
func Brokers() []string {
	return config.Get().KafkaBrokers
}
