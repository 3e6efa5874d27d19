package repository

import (
	"context"
	"time"

	"inventory-audit-api/internal/model"
)

// InventoryRepository defines inventory data access methods.
type InventoryRepository interface {
	// List returns non-deleted items matching every non-empty filter field, by id.
	List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)

	// Get returns a non-deleted item or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Item, error)

	// Find returns an item regardless of its deleted flag, or ErrNotFound.
	Find(ctx context.Context, id int64) (*model.Item, error)

	// Create inserts an item and returns its id. A taken sku yields *DuplicateSKUError.
	Create(ctx context.Context, item model.NewItem, now time.Time) (int64, error)

	// Update applies the patch and stamps updated_at.
	Update(ctx context.Context, id int64, patch model.ItemPatch, now time.Time) error

	// AdjustQuantity adds delta to the stored quantity.
	AdjustQuantity(ctx context.Context, id int64, delta int64, now time.Time) error

	// SoftDelete flags the item as deleted.
	SoftDelete(ctx context.Context, id int64, now time.Time) error

	// HardDelete removes the row.
	HardDelete(ctx context.Context, id int64) error

	// GetStats returns statistics about the inventory tables.
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// AuditRepository appends and reads inventory_audit rows. Rows are never updated.
type AuditRepository interface {
	// Insert appends a record and returns its id.
	Insert(ctx context.Context, rec *model.AuditRecord) (int64, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.AuditRecord, error)
}
