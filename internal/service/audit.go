package service

import (
	"context"
	"time"

	"inventory-audit-api/internal/model"
	"inventory-audit-api/internal/repository"

	"github.com/rs/zerolog/log"
)

// AuditLimit caps how many records the audit log endpoint returns.
const AuditLimit = 200

// Recorder appends audit records for committed inventory mutations.
type Recorder interface {
	Record(ctx context.Context, inventoryID int64, action model.AuditAction, before, after *model.Item, reason *string)
}

// Publisher mirrors stored audit records to an external channel.
type Publisher interface {
	Publish(ctx context.Context, rec *model.AuditRecord) error
}

// AuditRecorder writes audit rows. Failures are logged and never returned:
// the mutation being audited has already been committed.
type AuditRecorder struct {
	repo      repository.AuditRepository
	publisher Publisher
	now       func() time.Time
}

// NewAuditRecorder creates an audit recorder. publisher may be nil.
func NewAuditRecorder(repo repository.AuditRepository, publisher Publisher) *AuditRecorder {
	return &AuditRecorder{
		repo:      repo,
		publisher: publisher,
		now:       defaultNow,
	}
}

// Record serializes the snapshots and appends one audit row.
func (a *AuditRecorder) Record(ctx context.Context, inventoryID int64, action model.AuditAction, before, after *model.Item, reason *string) {
	// The write must outlive a client that hangs up after the mutation committed.
	ctx = context.WithoutCancel(ctx)

	beforeState, err := model.Snapshot(before)
	if err != nil {
		log.Error().Err(err).Int64("inventory_id", inventoryID).Str("action", string(action)).Msg("audit: failed to serialize before state")
		beforeState = model.EmptySnapshot
	}
	afterState, err := model.Snapshot(after)
	if err != nil {
		log.Error().Err(err).Int64("inventory_id", inventoryID).Str("action", string(action)).Msg("audit: failed to serialize after state")
		afterState = model.EmptySnapshot
	}

	rec := &model.AuditRecord{
		InventoryID: inventoryID,
		Action:      action,
		PerformedAt: a.now(),
		BeforeState: beforeState,
		AfterState:  afterState,
		Reason:      reason,
	}

	id, err := a.repo.Insert(ctx, rec)
	if err != nil {
		log.Error().Err(err).Int64("inventory_id", inventoryID).Str("action", string(action)).Msg("audit: failed to record")
		return
	}
	rec.ID = id

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, rec); err != nil {
			log.Warn().Err(err).Int64("audit_id", id).Msg("audit: failed to publish")
		}
	}
}

// Recent returns the newest audit records, at most AuditLimit of them.
func (a *AuditRecorder) Recent(ctx context.Context) ([]model.AuditRecord, error) {
	return a.repo.ListRecent(ctx, AuditLimit)
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
