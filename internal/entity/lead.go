package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Profile carries the optional survey answers a visitor fills in at the stall.
// Multi-select questions are kept as string slices, passed through verbatim.
type Profile struct {
	CompanyName       string   `json:"companyName,omitempty"`
	Designation       string   `json:"designation,omitempty"`
	CityState         string   `json:"cityState,omitempty"`
	CompanyType       []string `json:"companyType,omitempty"`
	CompanyTypeOther  string   `json:"companyTypeOther,omitempty"`
	Industry          []string `json:"industry,omitempty"`
	IndustryOther     string   `json:"industryOther,omitempty"`
	CompanySize       []string `json:"companySize,omitempty"`
	InterestAreas     []string `json:"interestAreas,omitempty"`
	Solutions         []string `json:"solutions,omitempty"`
	SolutionsOther    string   `json:"solutionsOther,omitempty"`
	Timeline          []string `json:"timeline,omitempty"`
	Budget            []string `json:"budget,omitempty"`
	FollowUpMode      []string `json:"followUpMode,omitempty"`
	BestTimeToContact []string `json:"bestTimeToContact,omitempty"`
	AdditionalNotes   string   `json:"additionalNotes,omitempty"`
	Consent           *bool    `json:"consent,omitempty"`
}

// Lead is a visitor's registration for one exhibition. Leads are insert-only.
type Lead struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ExhibitionID int64     `json:"exhibitionId"`
	CreatedAt    time.Time `json:"createdAt"`
	Profile
}

// ProductInterest links one lead to one product. (LeadID, ProductID) is unique.
type ProductInterest struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"leadId"`
	ProductID int64     `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewLead builds an unsaved lead stamped with the current time.
func NewLead(name, email, phone string, exhibitionID int64, profile Profile) (*Lead, error) {
	lead := &Lead{
		Name:         name,
		Email:        email,
		Phone:        phone,
		ExhibitionID: exhibitionID,
		Profile:      profile,
		CreatedAt:    time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(l.Phone) == "" {
		return errors.New("phone is required")
	}
	if l.ExhibitionID <= 0 {
		return errors.New("exhibition is required")
	}
	return nil
}

type LeadRepositoryInterface interface {
	// Create inserts the lead and fills its ID. A second lead with the same
	// email for the same exhibition yields ErrDuplicateRegistration.
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	FindByExhibitionID(ctx context.Context, exhibitionID int64) ([]*Lead, error)
	FindAll(ctx context.Context) ([]*Lead, error)
	ExistsByEmailAndExhibitionID(ctx context.Context, email string, exhibitionID int64) (bool, error)
}

type InterestRepositoryInterface interface {
	// Create inserts the association. A repeated pair yields ErrDuplicateInterest.
	Create(ctx context.Context, interest *ProductInterest) error
	Exists(ctx context.Context, leadID, productID int64) (bool, error)
	ProductsByLead(ctx context.Context, leadID int64) ([]*Product, error)
}
