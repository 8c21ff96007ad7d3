package entity

import "context"

type Exhibition struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Timing    string `json:"timing"`
	Active    bool   `json:"active"`
	Deleted   bool   `json:"-"`
}

type ExhibitionRepositoryInterface interface {
	// FindByID returns ErrExhibitionNotFound for unknown or soft-deleted exhibitions.
	FindByID(ctx context.Context, id int64) (*Exhibition, error)
}
