package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/expo-leads/internal/entity"
)

type ExhibitionRepository struct {
	DB *sql.DB
}

func NewExhibitionRepository(db *sql.DB) *ExhibitionRepository {
	return &ExhibitionRepository{DB: db}
}

func (r *ExhibitionRepository) FindByID(ctx context.Context, id int64) (*entity.Exhibition, error) {
	query := `
		SELECT id, name, COALESCE(location, ''),
			COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
			COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
			COALESCE(timing, ''), active
		FROM exhibitions
		WHERE id = $1 AND deleted = false
	`

	var e entity.Exhibition
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Location, &e.StartDate, &e.EndDate, &e.Timing, &e.Active,
	)
	if err != nil {
		return nil, notFound(err, entity.ErrExhibitionNotFound)
	}
	return &e, nil
}
