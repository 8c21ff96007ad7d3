package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
)

// Redeliverer makes one follow-up attempt for a stored lead.
type Redeliverer interface {
	Execute(ctx context.Context, leadID int64) (entity.NotificationOutcome, error)
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel     consumer
	Redeliverer Redeliverer
	Logger      *zap.Logger
}

func NewWorker(ch consumer, redeliverer Redeliverer, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:     ch,
		Redeliverer: redeliverer,
		Logger:      logger,
	}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	return consume(ctx, w.Channel, queueName, w.Logger, w.handle)
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var req RedeliveryRequest
	if err := json.Unmarshal(d.Body, &req); err != nil || req.LeadID <= 0 {
		w.Logger.Error("malformed redelivery request", zap.String("message_id", d.MessageId), zap.Error(err))
		// Rejected without requeue: straight to the DLQ.
		d.Nack(false, false)
		return
	}

	outcome, err := w.Redeliverer.Execute(ctx, req.LeadID)
	switch {
	case err != nil:
		w.Logger.Error("redelivery failed", zap.Int64("lead_id", req.LeadID), zap.Error(err))
		d.Nack(false, false)
	case !outcome.Sent:
		w.Logger.Warn("redelivery not sent", zap.Int64("lead_id", req.LeadID), zap.String("reason", outcome.Error))
		d.Nack(false, false)
	default:
		w.Logger.Info("redelivery sent", zap.Int64("lead_id", req.LeadID))
		d.Ack(false)
	}
}

func consume(ctx context.Context, ch consumer, queueName string, logger *zap.Logger, handle func(context.Context, amqp.Delivery)) error {
	msgs, err := ch.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queueName, err)
	}

	logger.Info("worker waiting", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", zap.String("queue", queueName))
			return nil
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed", zap.String("queue", queueName))
				return nil
			}
			handle(ctx, d)
		}
	}
}
