package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"inventory-audit-api/internal/model"
)

// SQLAuditRepository implements AuditRepository. It only ever inserts and reads.
type SQLAuditRepository struct {
	store *Store
}

// NewAuditRepository creates an audit repository on the store.
func NewAuditRepository(store *Store) *SQLAuditRepository {
	return &SQLAuditRepository{store: store}
}

// Insert appends one audit record.
func (r *SQLAuditRepository) Insert(ctx context.Context, rec *model.AuditRecord) (int64, error) {
	id, err := r.store.insert(ctx, r.store.db,
		`INSERT INTO inventory_audit (inventory_id, action, performed_at, before_state, after_state, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.InventoryID, string(rec.Action), rec.PerformedAt,
		string(rec.BeforeState), string(rec.AfterState), rec.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit record: %w", err)
	}
	return id, nil
}

// ListRecent returns the newest records first; ties on performed_at go to the higher id.
func (r *SQLAuditRepository) ListRecent(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.dialect.Rebind(
		`SELECT id, inventory_id, action, performed_at, before_state, after_state, reason
		 FROM inventory_audit
		 ORDER BY performed_at DESC, id DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	records := []model.AuditRecord{}
	for rows.Next() {
		var (
			rec           model.AuditRecord
			inventoryID   sql.NullInt64
			action        string
			before, after sql.NullString
			reason        sql.NullString
		)
		if err := rows.Scan(&rec.ID, &inventoryID, &action, &rec.PerformedAt, &before, &after, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.InventoryID = inventoryID.Int64
		rec.Action = model.AuditAction(action)
		rec.PerformedAt = rec.PerformedAt.UTC()
		rec.BeforeState = snapshotJSON(before)
		rec.AfterState = snapshotJSON(after)
		if reason.Valid {
			rec.Reason = &reason.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}

// snapshotJSON turns a stored snapshot back into embeddable JSON.
// Text that is not JSON is returned as a JSON string.
func snapshotJSON(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return model.EmptySnapshot
	}
	if json.Valid([]byte(s.String)) {
		return json.RawMessage(s.String)
	}
	quoted, _ := json.Marshal(s.String)
	return quoted
}

// Ensure SQLAuditRepository implements AuditRepository
var _ AuditRepository = (*SQLAuditRepository)(nil)
