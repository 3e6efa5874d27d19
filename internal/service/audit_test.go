package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-audit-api/internal/model"
	"inventory-audit-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuditRepo struct {
	inserts int
}

func (r *failingAuditRepo) Insert(ctx context.Context, rec *model.AuditRecord) (int64, error) {
	r.inserts++
	return 0, errors.New("audit table unavailable")
}

func (r *failingAuditRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	return nil, errors.New("audit table unavailable")
}

type capturePublisher struct {
	records []model.AuditRecord
	err     error
}

func (p *capturePublisher) Publish(ctx context.Context, rec *model.AuditRecord) error {
	p.records = append(p.records, *rec)
	return p.err
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	store := repository.NewTestStore(t)
	auditRepo := &failingAuditRepo{}
	svc := NewInventoryService(repository.NewInventoryRepository(store), NewAuditRecorder(auditRepo, nil))
	ctx := context.Background()

	item, err := svc.AdjustQuantity(ctx, 1, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(105), item.Quantity)
	assert.Equal(t, 1, auditRepo.inserts)

	stored, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(105), stored.Quantity)
}

func TestRecordPublishesStoredRecord(t *testing.T) {
	store := repository.NewTestStore(t)
	pub := &capturePublisher{err: errors.New("redis down")}
	rec := NewAuditRecorder(repository.NewAuditRepository(store), pub)
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)
	rec.now = func() time.Time { return fixed }

	item := &model.Item{ID: 1, SKU: "WIDGET-A-001", Quantity: 100}
	rec.Record(context.Background(), 1, model.ActionSoftDelete, item, nil, nil)

	require.Len(t, pub.records, 1)
	published := pub.records[0]
	assert.NotZero(t, published.ID)
	assert.Equal(t, model.ActionSoftDelete, published.Action)
	assert.True(t, fixed.Equal(published.PerformedAt))
	assert.JSONEq(t, `{}`, string(published.AfterState))

	records, err := rec.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, published.ID, records[0].ID)
	assert.True(t, fixed.Equal(records[0].PerformedAt))
}

func TestRecordSurvivesCanceledContext(t *testing.T) {
	store := repository.NewTestStore(t)
	rec := NewAuditRecorder(repository.NewAuditRepository(store), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, 2, model.ActionCreate, nil, &model.Item{ID: 2}, nil)

	records, err := rec.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecentCapsAt200(t *testing.T) {
	store := repository.NewTestStore(t)
	rec := NewAuditRecorder(repository.NewAuditRepository(store), nil)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	rec.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}
	for n := 0; n < AuditLimit+5; n++ {
		rec.Record(ctx, 1, model.ActionUpdate, nil, nil, nil)
	}

	records, err := rec.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, records, AuditLimit)
	for k := 1; k < len(records); k++ {
		assert.True(t, !records[k].PerformedAt.After(records[k-1].PerformedAt), "records must be newest first")
	}
	assert.True(t, base.Add(time.Duration(AuditLimit+5)*time.Second).Equal(records[0].PerformedAt))
}
