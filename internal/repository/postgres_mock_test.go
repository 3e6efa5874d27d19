package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"inventory-audit-api/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, PostgresDialect{}), mock
}

func TestPostgresCreateUsesReturning(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	repo := NewInventoryRepository(store)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), newWidget("PG-1"), now)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicate(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	repo := NewInventoryRepository(store)

	mock.ExpectQuery(`INSERT INTO inventory`).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "inventory_sku_key"`})

	_, err := repo.Create(context.Background(), newWidget("PG-1"), time.Now())
	var dup *DuplicateSKUError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "PG-1", dup.SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRebindsPlaceholders(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	repo := NewInventoryRepository(store)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory SET name = $1, quantity = $2, updated_at = $3 WHERE id = $4`)).
		WithArgs("Renamed", int64(3), now, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 7, model.ItemPatch{
		{Column: "name", Value: "Renamed"},
		{Column: "quantity", Value: int64(3)},
	}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListFilters(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	repo := NewInventoryRepository(store)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE deleted = $1 AND category = $2 AND (LOWER(name) LIKE $3 OR LOWER(sku) LIKE $4) ORDER BY id`)).
		WithArgs(false, "Widgets", "%wid%", "%wid%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "sku", "category", "quantity", "unit_price", "supplier_id",
			"location", "min_stock", "notes", "deleted", "created_at", "updated_at",
		}))

	items, err := repo.List(context.Background(), model.ItemFilter{Category: "Widgets", Query: "wid"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHardDeleteMissing(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	repo := NewInventoryRepository(store)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM inventory WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.HardDelete(context.Background(), 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
