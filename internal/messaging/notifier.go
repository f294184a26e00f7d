package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notifier publishes task completion and progress updates.
type Notifier interface {
	Notify(ctx context.Context, payload NotificationPayload) error
	Progress(ctx context.Context, payload ProgressPayload) error
}

// rabbitMQNotifier publishes updates to a durable RabbitMQ queue.
type rabbitMQNotifier struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQNotifier declares the updates queue and returns a Notifier.
// The channel is owned by the caller and must outlive the notifier.
func NewRabbitMQNotifier(ch *amqp.Channel, queueName string, logger *zap.Logger) (Notifier, error) {
	_, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		amqp.Table{"x-queue-mode": "lazy"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare updates queue '%s': %w", queueName, err)
	}

	return &rabbitMQNotifier{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("Notifier"),
	}, nil
}

func (n *rabbitMQNotifier) Notify(ctx context.Context, payload NotificationPayload) error {
	if err := n.publish(ctx, payload, payload.TaskID+"-notif"); err != nil {
		n.logger.Error("Failed to publish notification",
			zap.String("taskID", payload.TaskID), zap.Error(err))
		return fmt.Errorf("failed to publish notification for task %s: %w", payload.TaskID, err)
	}
	n.logger.Info("Notification published",
		zap.String("taskID", payload.TaskID), zap.String("status", string(payload.Status)))
	return nil
}

func (n *rabbitMQNotifier) Progress(ctx context.Context, payload ProgressPayload) error {
	messageID := fmt.Sprintf("%s-progress-%d", payload.TaskID, payload.CompletedSections)
	if err := n.publish(ctx, payload, messageID); err != nil {
		return fmt.Errorf("failed to publish progress for task %s: %w", payload.TaskID, err)
	}
	return nil
}

func (n *rabbitMQNotifier) publish(ctx context.Context, payload any, messageID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return n.channel.PublishWithContext(ctx,
		"",
		n.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "article-generator",
			MessageId:    messageID,
		},
	)
}
