package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"inventory-audit-api/internal/model"
	"inventory-audit-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	inventory *InventoryService
	audit     *AuditRecorder
	store     *repository.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repository.NewTestStore(t)
	audit := NewAuditRecorder(repository.NewAuditRepository(store), nil)
	return fixture{
		inventory: NewInventoryService(repository.NewInventoryRepository(store), audit),
		audit:     audit,
		store:     store,
	}
}

func strPtr(s string) *string { return &s }

func snapshotField(t *testing.T, raw json.RawMessage, field string) interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[field]
}

func TestCreateRecordsAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.inventory.Create(ctx, model.NewItem{
		Name:      "Bolt",
		SKU:       "BOLT-1",
		Quantity:  5,
		UnitPrice: decimal.RequireFromString("0.25"),
	}, strPtr("initial stock"))
	require.NoError(t, err)
	assert.Equal(t, "BOLT-1", item.SKU)
	assert.False(t, item.Deleted)

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, model.ActionCreate, rec.Action)
	assert.Equal(t, item.ID, rec.InventoryID)
	assert.JSONEq(t, `{}`, string(rec.BeforeState))
	assert.Equal(t, "BOLT-1", snapshotField(t, rec.AfterState, "sku"))
	require.NotNil(t, rec.Reason)
	assert.Equal(t, "initial stock", *rec.Reason)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, item := range []model.NewItem{{SKU: "X"}, {Name: "X"}, {}} {
		_, err := f.inventory.Create(ctx, item, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "name and sku required", verr.Message)
	}

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateDuplicateSKUHasNoAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.Create(ctx, model.NewItem{Name: "Dup", SKU: "WIDGET-A-001"}, nil)
	var dup *repository.DuplicateSKUError
	require.True(t, errors.As(err, &dup))

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdjustQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.inventory.AdjustQuantity(ctx, 1, -30, strPtr("damaged"))
	require.NoError(t, err)
	assert.Equal(t, int64(70), item.Quantity)

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionQtyAdjust, records[0].Action)
	assert.Equal(t, float64(100), snapshotField(t, records[0].BeforeState, "quantity"))
	assert.Equal(t, float64(70), snapshotField(t, records[0].AfterState, "quantity"))

	item, err = f.inventory.AdjustQuantity(ctx, 1, -100, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-30), item.Quantity)
}

func TestAdjustQuantityMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.AdjustQuantity(context.Background(), 404, 1, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.inventory.Update(ctx, 2, model.ItemPatch{
		{Column: "location", Value: "WH-05"},
		{Column: "min_stock", Value: int64(8)},
	}, strPtr("moved"))
	require.NoError(t, err)
	require.NotNil(t, item.Location)
	assert.Equal(t, "WH-05", *item.Location)
	assert.Equal(t, int64(8), item.MinStock)
	assert.Equal(t, "Gadget B", item.Name)

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionUpdate, records[0].Action)
	assert.Equal(t, "WH-02-R03", snapshotField(t, records[0].BeforeState, "location"))
	assert.Equal(t, "WH-05", snapshotField(t, records[0].AfterState, "location"))
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		patch model.ItemPatch
		msg   string
	}{
		{"empty patch", model.ItemPatch{}, "No updatable fields provided"},
		{"null name", model.ItemPatch{{Column: "name", Value: nil}}, "name cannot be empty"},
		{"empty sku", model.ItemPatch{{Column: "sku", Value: ""}}, "sku cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.inventory.Update(ctx, 1, tt.patch, nil)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.msg, verr.Message)
		})
	}

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateMissingBeforeValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.Update(context.Background(), 999, model.ItemPatch{}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateSoftDeletedItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.Remove(ctx, 1, DeleteSoft, nil)
	require.NoError(t, err)

	item, err := f.inventory.Update(ctx, 1, model.ItemPatch{{Column: "deleted", Value: false}}, strPtr("restore"))
	require.NoError(t, err)
	assert.False(t, item.Deleted)

	_, err = f.inventory.Get(ctx, 1)
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.inventory.Remove(ctx, 1, DeleteSoft, strPtr("discontinued"))
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = f.inventory.Get(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	items, err := f.inventory.List(ctx, model.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	res, err = f.inventory.Remove(ctx, 1, DeleteHard, nil)
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = f.inventory.Remove(ctx, 1, DeleteHard, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	records, err := f.audit.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.ActionDelete, records[0].Action)
	assert.Equal(t, model.ActionSoftDelete, records[1].Action)
	assert.Equal(t, true, snapshotField(t, records[0].BeforeState, "deleted"))
	assert.Equal(t, false, snapshotField(t, records[1].BeforeState, "deleted"))
	assert.JSONEq(t, `{}`, string(records[0].AfterState))
	require.NotNil(t, records[1].Reason)
	assert.Equal(t, "discontinued", *records[1].Reason)
}

func TestParseDeleteMode(t *testing.T) {
	assert.Equal(t, DeleteHard, ParseDeleteMode("hard"))
	assert.Equal(t, DeleteHard, ParseDeleteMode("HARD"))
	assert.Equal(t, DeleteSoft, ParseDeleteMode("soft"))
	assert.Equal(t, DeleteSoft, ParseDeleteMode(""))
	assert.Equal(t, DeleteSoft, ParseDeleteMode("purge"))
}

func TestNewInventoryServiceNilRepo(t *testing.T) {
	assert.Nil(t, NewInventoryService(nil, nil))
}
