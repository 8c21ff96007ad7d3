package usecase

import "github.com/xavierca1/expo-leads/internal/entity"

// SubmitLeadInput is the public registration form. Profile answers are
// stored exactly as received.
type SubmitLeadInput struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,notblank"`
	Phone string `json:"phone" validate:"required,notblank"`

	// ExhibitionID is resolved against the catalogue; unknown ids are an
	// invalid reference rather than a validation error.
	ExhibitionID int64   `json:"exhibitionId"`
	ProductIDs   []int64 `json:"productIds"`
	entity.Profile
}

type SubmitLeadOutput struct {
	Lead       *entity.Lead
	Exhibition *entity.Exhibition
	// Products holds each requested product once, in request order.
	Products []*entity.Product
}

type LeadSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterVisitorOutput struct {
	Visitor    LeadSummary `json:"visitor"`
	EmailSent  bool        `json:"emailSent"`
	EmailError string      `json:"emailError,omitempty"`
}
