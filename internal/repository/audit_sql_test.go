package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"inventory-audit-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditInsertAndListRecent(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()
	repo := NewAuditRepository(store)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reason := "cycle count"

	firstID, err := repo.Insert(ctx, &model.AuditRecord{
		InventoryID: 1,
		Action:      model.ActionCreate,
		PerformedAt: base,
		BeforeState: model.EmptySnapshot,
		AfterState:  json.RawMessage(`{"id":1,"quantity":100}`),
	})
	require.NoError(t, err)

	// Same timestamp as the first: the higher id must sort first.
	tieID, err := repo.Insert(ctx, &model.AuditRecord{
		InventoryID: 1,
		Action:      model.ActionQtyAdjust,
		PerformedAt: base,
		BeforeState: json.RawMessage(`{"id":1,"quantity":100}`),
		AfterState:  json.RawMessage(`{"id":1,"quantity":70}`),
		Reason:      &reason,
	})
	require.NoError(t, err)

	newestID, err := repo.Insert(ctx, &model.AuditRecord{
		InventoryID: 2,
		Action:      model.ActionSoftDelete,
		PerformedAt: base.Add(time.Second),
		BeforeState: json.RawMessage(`{"id":2}`),
		AfterState:  model.EmptySnapshot,
	})
	require.NoError(t, err)

	records, err := repo.ListRecent(ctx, 200)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []int64{newestID, tieID, firstID}, []int64{records[0].ID, records[1].ID, records[2].ID})

	adj := records[1]
	assert.Equal(t, model.ActionQtyAdjust, adj.Action)
	assert.Equal(t, int64(1), adj.InventoryID)
	assert.True(t, base.Equal(adj.PerformedAt))
	assert.JSONEq(t, `{"id":1,"quantity":100}`, string(adj.BeforeState))
	assert.JSONEq(t, `{"id":1,"quantity":70}`, string(adj.AfterState))
	require.NotNil(t, adj.Reason)
	assert.Equal(t, "cycle count", *adj.Reason)

	assert.Nil(t, records[2].Reason)
	assert.JSONEq(t, `{}`, string(records[2].BeforeState))
}

func TestAuditListRecentLimit(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()
	repo := NewAuditRepository(store)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, &model.AuditRecord{
			InventoryID: 1,
			Action:      model.ActionUpdate,
			PerformedAt: base.Add(time.Duration(i) * time.Minute),
			BeforeState: model.EmptySnapshot,
			AfterState:  model.EmptySnapshot,
		})
		require.NoError(t, err)
	}

	records, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, base.Add(4*time.Minute).Equal(records[0].PerformedAt))
	assert.True(t, base.Add(2*time.Minute).Equal(records[2].PerformedAt))
}

func TestAuditListRecentEmpty(t *testing.T) {
	records, err := NewAuditRepository(NewTestStore(t)).ListRecent(context.Background(), 200)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSnapshotJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		null bool
		want string
	}{
		{"null column", "", true, `{}`},
		{"empty text", "", false, `{}`},
		{"object", `{"a":1}`, false, `{"a":1}`},
		{"not json", "legacy text", false, `"legacy text"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snapshotJSON(sql.NullString{String: tt.in, Valid: !tt.null})
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
