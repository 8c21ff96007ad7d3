package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LeadSyncer copies one captured lead into the CRM.
type LeadSyncer interface {
	Execute(ctx context.Context, event LeadCapturedEvent) error
}

// SyncWorker drains lead.captured events into the CRM. A failed sync is
// dead-lettered; nothing is retried in place.
type SyncWorker struct {
	Channel consumer
	Syncer  LeadSyncer
	Logger  *zap.Logger
}

func NewSyncWorker(ch consumer, syncer LeadSyncer, logger *zap.Logger) *SyncWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncWorker{Channel: ch, Syncer: syncer, Logger: logger}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	return consume(ctx, w.Channel, CRMQueue, w.Logger, w.handle)
}

func (w *SyncWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event LeadCapturedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.LeadID <= 0 {
		w.Logger.Error("malformed lead event", zap.String("message_id", d.MessageId), zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.Syncer.Execute(ctx, event); err != nil {
		w.Logger.Error("crm sync failed", zap.Int64("lead_id", event.LeadID), zap.Error(err))
		d.Nack(false, false)
		return
	}

	d.Ack(false)
}
