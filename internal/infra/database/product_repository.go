package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/expo-leads/internal/entity"
)

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(attachment, '')
		FROM products
		WHERE id = $1 AND deleted = false
	`

	var p entity.Product
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Attachment)
	if err != nil {
		return nil, notFound(err, entity.ErrProductNotFound)
	}
	return &p, nil
}
