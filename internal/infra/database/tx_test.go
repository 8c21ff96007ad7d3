package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/expo-leads/internal/entity"
)

func TestTxManager_WithinTx(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		repo := NewInterestRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectCommit()

		err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
			_, err := repo.Exists(ctx, 1, 2)
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
			return entity.ErrProductNotFound
		})

		assert.ErrorIs(t, err, entity.ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
			return tm.WithinTx(ctx, func(ctx context.Context) error { return nil })
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)

		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := tm.WithinTx(context.Background(), func(ctx context.Context) error { return nil })
		assert.ErrorContains(t, err, "begin transaction")
	})
}
