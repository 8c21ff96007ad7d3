package entity

import "context"

// Product is owned by the catalogue; this service only reads it.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Attachment references the collateral file, relative to the collateral store.
	Attachment string `json:"attachment,omitempty"`
	Deleted    bool   `json:"-"`
}

// HasCollateral reports whether a collateral file is referenced.
func (p *Product) HasCollateral() bool {
	return p.Attachment != ""
}

type ProductRepositoryInterface interface {
	// FindByID returns ErrProductNotFound for unknown or soft-deleted products.
	FindByID(ctx context.Context, id int64) (*Product, error)
}
