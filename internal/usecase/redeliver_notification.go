package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
)

// RedeliverNotificationUseCase retries the follow-up for a lead that is
// already stored. It is driven by the queue worker.
type RedeliverNotificationUseCase struct {
	LeadRepo       entity.LeadRepositoryInterface
	InterestRepo   entity.InterestRepositoryInterface
	ExhibitionRepo entity.ExhibitionRepositoryInterface
	Notifier       Notifier
	Logger         *zap.Logger
}

func NewRedeliverNotificationUseCase(
	leadRepo entity.LeadRepositoryInterface,
	interestRepo entity.InterestRepositoryInterface,
	exhibitionRepo entity.ExhibitionRepositoryInterface,
	notifier Notifier,
	logger *zap.Logger,
) *RedeliverNotificationUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedeliverNotificationUseCase{
		LeadRepo:       leadRepo,
		InterestRepo:   interestRepo,
		ExhibitionRepo: exhibitionRepo,
		Notifier:       notifier,
		Logger:         logger,
	}
}

func (uc *RedeliverNotificationUseCase) Execute(ctx context.Context, leadID int64) (entity.NotificationOutcome, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		return entity.NotificationOutcome{}, fmt.Errorf("load lead %d: %w", leadID, err)
	}

	// A removed exhibition still gets a follow-up, just without its name.
	exhibitionName := ""
	exhibition, err := uc.ExhibitionRepo.FindByID(ctx, lead.ExhibitionID)
	switch {
	case err == nil:
		exhibitionName = exhibition.Name
	case !errors.Is(err, entity.ErrExhibitionNotFound):
		return entity.NotificationOutcome{}, fmt.Errorf("load exhibition %d: %w", lead.ExhibitionID, err)
	}

	products, err := uc.InterestRepo.ProductsByLead(ctx, lead.ID)
	if err != nil {
		return entity.NotificationOutcome{}, fmt.Errorf("load products for lead %d: %w", lead.ID, err)
	}

	outcome := uc.Notifier.Notify(ctx, lead, exhibitionName, products)
	uc.Logger.Info("follow-up redelivered",
		zap.Int64("lead_id", lead.ID),
		zap.Bool("sent", outcome.Sent),
	)
	return outcome, nil
}
