package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/infra/queue"
)

// RegisterVisitorUseCase runs the full registration: persist, then notify
// once, then publish. Only the persist step can fail the request.
type RegisterVisitorUseCase struct {
	Submitter LeadSubmitter
	Notifier  Notifier

	// Publisher is optional; nil disables lead events and redelivery.
	Publisher         EventPublisher
	RedeliveryEnabled bool
	Logger            *zap.Logger
}

func NewRegisterVisitorUseCase(submitter LeadSubmitter, notifier Notifier, publisher EventPublisher, redelivery bool, logger *zap.Logger) *RegisterVisitorUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterVisitorUseCase{
		Submitter:         submitter,
		Notifier:          notifier,
		Publisher:         publisher,
		RedeliveryEnabled: redelivery,
		Logger:            logger,
	}
}

func (uc *RegisterVisitorUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*RegisterVisitorOutput, error) {
	result, err := uc.Submitter.Execute(ctx, input)
	if err != nil {
		return nil, err
	}

	lead := result.Lead
	exhibitionName := ""
	if result.Exhibition != nil {
		exhibitionName = result.Exhibition.Name
	}

	outcome := uc.Notifier.Notify(ctx, lead, exhibitionName, result.Products)

	output := &RegisterVisitorOutput{
		Visitor: LeadSummary{
			ID:    lead.ID,
			Name:  lead.Name,
			Email: lead.Email,
		},
		EmailSent: outcome.Sent,
	}
	if !outcome.Sent {
		output.EmailError = outcome.Error
	}

	uc.publish(ctx, result, outcome.Sent)

	return output, nil
}

// publish is best-effort: failures are logged and never reach the caller.
func (uc *RegisterVisitorUseCase) publish(ctx context.Context, result *SubmitLeadOutput, sent bool) {
	if uc.Publisher == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	lead := result.Lead

	event := queue.LeadCapturedEvent{
		LeadID:       lead.ID,
		ExhibitionID: lead.ExhibitionID,
		ProductIDs:   make([]int64, 0, len(result.Products)),
		EmailSent:    sent,
		CapturedAt:   lead.CreatedAt,
	}
	if result.Exhibition != nil {
		event.ExhibitionName = result.Exhibition.Name
	}
	for _, p := range result.Products {
		event.ProductIDs = append(event.ProductIDs, p.ID)
	}

	if err := uc.Publisher.PublishLeadCaptured(ctx, event); err != nil {
		uc.Logger.Warn("lead event not published", zap.Int64("lead_id", lead.ID), zap.Error(err))
	}

	if sent || !uc.RedeliveryEnabled {
		return
	}

	req := queue.RedeliveryRequest{
		LeadID:      lead.ID,
		Reason:      "initial send failed",
		RequestedAt: time.Now(),
	}
	if err := uc.Publisher.PublishRedelivery(ctx, req); err != nil {
		uc.Logger.Warn("redelivery not queued", zap.Int64("lead_id", lead.ID), zap.Error(err))
		return
	}
	uc.Logger.Info("redelivery queued", zap.Int64("lead_id", lead.ID))
}
