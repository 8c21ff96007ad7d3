package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/crypto"
)

// DashboardRepository runs the read-only aggregate queries. Each call is an
// independent statement; the figures are not a consistent snapshot.
type DashboardRepository struct {
	DB     *sql.DB
	Cipher *crypto.FieldCipher
	// TimeZone names the zone LeadsPerDay buckets by. It must match the
	// clock the caller uses for its day window.
	TimeZone string
}

func NewDashboardRepository(db *sql.DB, cipher *crypto.FieldCipher, timeZone string) *DashboardRepository {
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &DashboardRepository{DB: db, Cipher: cipher, TimeZone: timeZone}
}

func (r *DashboardRepository) CountLeads(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM leads`)
}

// CountLeadsBetween counts leads with start <= created_at < end.
func (r *DashboardRepository) CountLeadsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM leads WHERE created_at >= $1 AND created_at < $2`, start, end)
}

func (r *DashboardRepository) CountInterests(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM product_interests`)
}

func (r *DashboardRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *DashboardRepository) RecentLeads(ctx context.Context, limit int) ([]entity.RecentVisitor, error) {
	query := `
		SELECT id, name, email, phone, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []entity.RecentVisitor
	for rows.Next() {
		var v entity.RecentVisitor
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.CreatedAt); err != nil {
			return nil, err
		}
		if r.Cipher != nil {
			for _, f := range []*string{&v.Name, &v.Email, &v.Phone} {
				plain, err := r.Cipher.Decrypt(*f)
				if err != nil {
					return nil, fmt.Errorf("decrypt lead field: %w", err)
				}
				*f = plain
			}
		}
		recent = append(recent, v)
	}
	return recent, rows.Err()
}

// LeadsPerDay is sparse: days without leads are absent.
func (r *DashboardRepository) LeadsPerDay(ctx context.Context) ([]entity.DateCount, error) {
	query := `
		SELECT to_char((created_at AT TIME ZONE $1)::date, 'YYYY-MM-DD'), COUNT(*)
		FROM leads
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := r.DB.QueryContext(ctx, query, r.TimeZone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []entity.DateCount
	for rows.Next() {
		var d entity.DateCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// TopProducts orders by interest count only; equal counts come back in
// whatever order Postgres produces.
func (r *DashboardRepository) TopProducts(ctx context.Context) ([]entity.NameCount, error) {
	query := `
		SELECT p.name, COUNT(*)
		FROM product_interests pi
		JOIN products p ON p.id = pi.product_id
		GROUP BY p.name
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []entity.NameCount
	for rows.Next() {
		var n entity.NameCount
		if err := rows.Scan(&n.Name, &n.Count); err != nil {
			return nil, err
		}
		top = append(top, n)
	}
	return top, rows.Err()
}
