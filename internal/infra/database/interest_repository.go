package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/expo-leads/internal/entity"
)

type InterestRepository struct {
	DB *sql.DB
}

func NewInterestRepository(db *sql.DB) *InterestRepository {
	return &InterestRepository{DB: db}
}

// Create relies on ON CONFLICT instead of catching 23505: a unique violation
// would abort the surrounding transaction.
func (r *InterestRepository) Create(ctx context.Context, interest *entity.ProductInterest) error {
	query := `
		INSERT INTO product_interests (lead_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (lead_id, product_id) DO NOTHING
		RETURNING id
	`

	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		interest.LeadID,
		interest.ProductID,
		interest.CreatedAt,
	).Scan(&interest.ID)

	return notFound(err, entity.ErrDuplicateInterest)
}

func (r *InterestRepository) Exists(ctx context.Context, leadID, productID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM product_interests WHERE lead_id = $1 AND product_id = $2)`

	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, leadID, productID).Scan(&exists)
	return exists, err
}

// ProductsByLead includes products deleted since the lead registered.
func (r *InterestRepository) ProductsByLead(ctx context.Context, leadID int64) ([]*entity.Product, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), COALESCE(p.attachment, ''), p.deleted
		FROM product_interests pi
		JOIN products p ON p.id = pi.product_id
		WHERE pi.lead_id = $1
		ORDER BY pi.id
	`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Attachment, &p.Deleted); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}
