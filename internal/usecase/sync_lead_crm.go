package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/expo-leads/internal/infra/queue"
)

// SyncLeadToCRMUseCase copies a committed lead into the CRM. Contact details
// come from storage, never from the event.
type SyncLeadToCRMUseCase struct {
	LeadRepo     entity.LeadRepositoryInterface
	InterestRepo entity.InterestRepositoryInterface
	CRM          CRMClient
	Logger       *zap.Logger
}

func NewSyncLeadToCRMUseCase(leadRepo entity.LeadRepositoryInterface, interestRepo entity.InterestRepositoryInterface, crm CRMClient, logger *zap.Logger) *SyncLeadToCRMUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncLeadToCRMUseCase{
		LeadRepo:     leadRepo,
		InterestRepo: interestRepo,
		CRM:          crm,
		Logger:       logger,
	}
}

func (uc *SyncLeadToCRMUseCase) Execute(ctx context.Context, event queue.LeadCapturedEvent) error {
	lead, err := uc.LeadRepo.FindByID(ctx, event.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %d: %w", event.LeadID, err)
	}

	products, err := uc.InterestRepo.ProductsByLead(ctx, lead.ID)
	if err != nil {
		return fmt.Errorf("load products for lead %d: %w", lead.ID, err)
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}

	crmID, err := uc.CRM.CreateLead(ctx, kommo.LeadInput{
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		CompanyName:    lead.CompanyName,
		ExhibitionName: event.ExhibitionName,
		ProductNames:   names,
	})
	if err != nil {
		return err
	}

	uc.Logger.Info("lead synced to crm", zap.Int64("lead_id", lead.ID), zap.Int("crm_lead_id", crmID))
	return nil
}
