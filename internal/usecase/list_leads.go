package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
)

type ListLeadsUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	Logger   *zap.Logger
}

func NewListLeadsUseCase(leadRepo entity.LeadRepositoryInterface, logger *zap.Logger) *ListLeadsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListLeadsUseCase{LeadRepo: leadRepo, Logger: logger}
}

// ByExhibition lists an exhibition's leads oldest first.
func (uc *ListLeadsUseCase) ByExhibition(ctx context.Context, exhibitionID int64) ([]*entity.Lead, error) {
	leads, err := uc.LeadRepo.FindByExhibitionID(ctx, exhibitionID)
	if err != nil {
		uc.Logger.Error("list leads by exhibition failed", zap.Int64("exhibition_id", exhibitionID), zap.Error(err))
		return nil, databaseError("failed to list leads", err)
	}
	return nonNil(leads), nil
}

func (uc *ListLeadsUseCase) All(ctx context.Context) ([]*entity.Lead, error) {
	leads, err := uc.LeadRepo.FindAll(ctx)
	if err != nil {
		uc.Logger.Error("list leads failed", zap.Error(err))
		return nil, databaseError("failed to list leads", err)
	}
	return nonNil(leads), nil
}

// Exists is advisory: it lets the form warn early but never replaces the
// unique constraint checked on submit.
func (uc *ListLeadsUseCase) Exists(ctx context.Context, email string, exhibitionID int64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || exhibitionID <= 0 {
		return false, nil
	}

	exists, err := uc.LeadRepo.ExistsByEmailAndExhibitionID(ctx, email, exhibitionID)
	if err != nil {
		uc.Logger.Error("lead lookup failed", zap.Int64("exhibition_id", exhibitionID), zap.Error(err))
		return false, databaseError("failed to check registration", err)
	}
	return exists, nil
}
