package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
)

// SubmitLeadUseCase validates a registration and persists the lead together
// with its product interests in a single transaction. It performs no I/O
// beyond the store.
type SubmitLeadUseCase struct {
	Tx             TxRunner
	LeadRepo       entity.LeadRepositoryInterface
	InterestRepo   entity.InterestRepositoryInterface
	ExhibitionRepo entity.ExhibitionRepositoryInterface
	ProductRepo    entity.ProductRepositoryInterface
	Logger         *zap.Logger
}

func NewSubmitLeadUseCase(
	tx TxRunner,
	leadRepo entity.LeadRepositoryInterface,
	interestRepo entity.InterestRepositoryInterface,
	exhibitionRepo entity.ExhibitionRepositoryInterface,
	productRepo entity.ProductRepositoryInterface,
	logger *zap.Logger,
) *SubmitLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitLeadUseCase{
		Tx:             tx,
		LeadRepo:       leadRepo,
		InterestRepo:   interestRepo,
		ExhibitionRepo: exhibitionRepo,
		ProductRepo:    productRepo,
		Logger:         logger,
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	if errs := ValidateSubmitLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	// No exhibition has a non-positive id.
	if input.ExhibitionID <= 0 {
		return nil, invalidReference("exhibition", MsgExhibitionNotFound)
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, input.ExhibitionID, input.Profile)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: "validation failed: " + err.Error()}
	}

	productIDs := uniqueIDs(input.ProductIDs)

	var exhibition *entity.Exhibition
	var products []*entity.Product

	txn := NewTransaction(uc.Tx)

	txn.AddOperation("resolve_exhibition", func(ctx context.Context) error {
		found, err := uc.ExhibitionRepo.FindByID(ctx, input.ExhibitionID)
		if errors.Is(err, entity.ErrExhibitionNotFound) {
			return invalidReference("exhibition", MsgExhibitionNotFound)
		}
		if err != nil {
			return err
		}
		exhibition = found
		return nil
	})

	// The unique index on (exhibition, email) is the arbiter: two concurrent
	// submissions cannot both get past this insert.
	txn.AddOperation("create_lead", func(ctx context.Context) error {
		err := uc.LeadRepo.Create(ctx, lead)
		if errors.Is(err, entity.ErrDuplicateRegistration) {
			return duplicateRegistration()
		}
		return err
	})

	txn.AddOperation("link_products", func(ctx context.Context) error {
		products = make([]*entity.Product, 0, len(productIDs))
		for _, productID := range productIDs {
			product, err := uc.ProductRepo.FindByID(ctx, productID)
			if errors.Is(err, entity.ErrProductNotFound) {
				return invalidReference("product", MsgProductNotFound)
			}
			if err != nil {
				return err
			}
			products = append(products, product)

			exists, err := uc.InterestRepo.Exists(ctx, lead.ID, productID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			err = uc.InterestRepo.Create(ctx, &entity.ProductInterest{
				LeadID:    lead.ID,
				ProductID: productID,
				CreatedAt: lead.CreatedAt,
			})
			if err != nil && !errors.Is(err, entity.ErrDuplicateInterest) {
				return err
			}
		}
		return nil
	})

	if err := txn.Execute(ctx); err != nil {
		var domainErr *DomainError
		if errors.As(err, &domainErr) {
			uc.Logger.Info("lead rejected",
				zap.String("code", domainErr.Code),
				zap.Int64("exhibition_id", input.ExhibitionID),
			)
			return nil, domainErr
		}
		uc.Logger.Error("lead intake failed", zap.Int64("exhibition_id", input.ExhibitionID), zap.Error(err))
		return nil, databaseError("failed to persist lead", err)
	}

	uc.Logger.Info("lead captured",
		zap.Int64("lead_id", lead.ID),
		zap.Int64("exhibition_id", lead.ExhibitionID),
		zap.Int("products", len(products)),
	)

	return &SubmitLeadOutput{
		Lead:       lead,
		Exhibition: exhibition,
		Products:   products,
	}, nil
}

// uniqueIDs collapses repeated ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
