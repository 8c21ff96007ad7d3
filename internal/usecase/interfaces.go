package usecase

import (
	"context"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/expo-leads/internal/infra/mail"
	"github.com/xavierca1/expo-leads/internal/infra/queue"
)

// Mailer delivers a composed message. Implementations return an error on any
// transport failure.
type Mailer interface {
	Send(ctx context.Context, msg *mail.Message) error
}

// FileReader returns the bytes behind a stored reference, or storage.ErrNotFound.
type FileReader interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

type LeadSubmitter interface {
	Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error)
}

type Notifier interface {
	Notify(ctx context.Context, lead *entity.Lead, exhibitionName string, products []*entity.Product) entity.NotificationOutcome
}

type EventPublisher interface {
	PublishLeadCaptured(ctx context.Context, event queue.LeadCapturedEvent) error
	PublishRedelivery(ctx context.Context, req queue.RedeliveryRequest) error
}

type CRMClient interface {
	CreateLead(ctx context.Context, input kommo.LeadInput) (int, error)
}
