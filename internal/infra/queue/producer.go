package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadCapturedEvent is published after a lead commits, for downstream consumers.
type LeadCapturedEvent struct {
	LeadID         int64     `json:"lead_id"`
	ExhibitionID   int64     `json:"exhibition_id"`
	ExhibitionName string    `json:"exhibition_name"`
	ProductIDs     []int64   `json:"product_ids"`
	EmailSent      bool      `json:"email_sent"`
	CapturedAt     time.Time `json:"captured_at"`
}

// RedeliveryRequest asks the worker for one more follow-up attempt.
type RedeliveryRequest struct {
	LeadID      int64     `json:"lead_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadCaptured(ctx context.Context, event LeadCapturedEvent) error {
	return p.publish(ctx, LeadCapturedKey, "lead.captured", event)
}

func (p *RabbitMQProducer) PublishRedelivery(ctx context.Context, req RedeliveryRequest) error {
	return p.publish(ctx, RedeliveryKey, "notification.redeliver", req)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key, msgType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", msgType, err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         msgType,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", msgType, err)
	}

	return nil
}
