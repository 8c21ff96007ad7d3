package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/expo-leads/internal/entity"
)

func TestDashboardRepository_Counts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db, nil, "")
	ctx := context.Background()

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE created_at >= $1 AND created_at < $2")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM product_interests")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(20)))

	total, err := repo.CountLeads(ctx)
	require.NoError(t, err)
	today, err := repo.CountLeadsBetween(ctx, start, end)
	require.NoError(t, err)
	interests, err := repo.CountInterests(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(12), total)
	assert.Equal(t, int64(3), today)
	assert.Equal(t, int64(20), interests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_Series(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db, nil, "")
	ctx := context.Background()

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at"}).
			AddRow(int64(9), "Ravi", "ravi@example.com", "222", time.Now()))
	mock.ExpectQuery(`(?s)AT TIME ZONE \$1\)::date.+GROUP BY 1\s+ORDER BY 1`).
		WithArgs("UTC").
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-03-13", int64(4)).
			AddRow("2026-03-14", int64(2)))
	mock.ExpectQuery(`GROUP BY p.name\s+ORDER BY COUNT\(\*\) DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).
			AddRow("Looms", int64(7)).
			AddRow("Dyes", int64(2)))

	recent, err := repo.RecentLeads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(9), recent[0].ID)

	days, err := repo.LeadsPerDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-13", days[0].Date)
	assert.Equal(t, int64(2), days[1].Count)

	top, err := repo.TopProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Looms", top[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_LeadsPerDayUsesAppZone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db, nil, "Asia/Kolkata")

	mock.ExpectQuery(regexp.QuoteMeta("to_char((created_at AT TIME ZONE $1)::date, 'YYYY-MM-DD')")).
		WithArgs("Asia/Kolkata").
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow("2026-03-15", int64(1)))

	days, err := repo.LeadsPerDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.DateCount{{Date: "2026-03-15", Count: 1}}, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}
