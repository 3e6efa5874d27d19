package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-audit-api/internal/model"
)

const itemColumns = `id, name, sku, category, quantity, unit_price, supplier_id, location, min_stock, notes, deleted, created_at, updated_at`

// SQLInventoryRepository implements InventoryRepository over any supported dialect.
type SQLInventoryRepository struct {
	store *Store
}

// NewInventoryRepository creates an inventory repository on the store.
func NewInventoryRepository(store *Store) *SQLInventoryRepository {
	return &SQLInventoryRepository{store: store}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                     model.Item
		category, location, note sql.NullString
		supplierID               sql.NullInt64
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.SKU, &category, &item.Quantity, &item.UnitPrice,
		&supplierID, &location, &item.MinStock, &note, &item.Deleted, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		item.Category = &category.String
	}
	if location.Valid {
		item.Location = &location.String
	}
	if note.Valid {
		item.Notes = &note.String
	}
	if supplierID.Valid {
		item.SupplierID = &supplierID.Int64
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// List returns non-deleted items matching the filter.
func (r *SQLInventoryRepository) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory WHERE deleted = ?`
	args := []interface{}{false}

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		query += ` AND location = ?`
		args = append(args, filter.Location)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query += ` AND (LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)`
		args = append(args, like, like)
	}
	query += ` ORDER BY id`

	rows, err := r.store.db.QueryContext(ctx, r.store.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// Get returns a non-deleted item by id.
func (r *SQLInventoryRepository) Get(ctx context.Context, id int64) (*model.Item, error) {
	return r.queryOne(ctx, `SELECT `+itemColumns+` FROM inventory WHERE id = ? AND deleted = ?`, id, false)
}

// Find returns an item by id whether or not it is soft-deleted.
func (r *SQLInventoryRepository) Find(ctx context.Context, id int64) (*model.Item, error) {
	return r.queryOne(ctx, `SELECT `+itemColumns+` FROM inventory WHERE id = ?`, id)
}

func (r *SQLInventoryRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*model.Item, error) {
	item, err := scanItem(r.store.db.QueryRowContext(ctx, r.store.dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

// Create inserts a new item.
func (r *SQLInventoryRepository) Create(ctx context.Context, item model.NewItem, now time.Time) (int64, error) {
	id, err := r.store.insert(ctx, r.store.db,
		`INSERT INTO inventory (name, sku, category, quantity, unit_price, supplier_id, location, min_stock, notes, deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.SKU, item.Category, item.Quantity, item.UnitPrice, item.SupplierID,
		item.Location, item.MinStock, item.Notes, false, now, now,
	)
	if err != nil {
		if r.store.dialect.IsUniqueViolation(err) {
			return 0, &DuplicateSKUError{SKU: item.SKU, Err: err}
		}
		return 0, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return id, nil
}

// Update applies only the patched columns and stamps updated_at.
func (r *SQLInventoryRepository) Update(ctx context.Context, id int64, patch model.ItemPatch, now time.Time) error {
	if len(patch) == 0 {
		return errors.New("empty patch")
	}

	sets := make([]string, 0, len(patch)+1)
	args := make([]interface{}, 0, len(patch)+2)
	var sku string
	for _, f := range patch {
		if !isUpdatable(f.Column) {
			return fmt.Errorf("column %q is not updatable", f.Column)
		}
		sets = append(sets, f.Column+" = ?")
		args = append(args, f.Value)
		if f.Column == "sku" {
			sku, _ = f.Value.(string)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now, id)

	query := `UPDATE inventory SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.store.db.ExecContext(ctx, r.store.dialect.Rebind(query), args...); err != nil {
		if r.store.dialect.IsUniqueViolation(err) {
			return &DuplicateSKUError{SKU: sku, Err: err}
		}
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return nil
}

func isUpdatable(col string) bool {
	for _, c := range model.Updatable {
		if c == col {
			return true
		}
	}
	return false
}

// AdjustQuantity adds delta to quantity in a single statement. No floor is applied.
func (r *SQLInventoryRepository) AdjustQuantity(ctx context.Context, id int64, delta int64, now time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		r.store.dialect.Rebind(`UPDATE inventory SET quantity = quantity + ?, updated_at = ? WHERE id = ?`),
		delta, now, id)
	if err != nil {
		return fmt.Errorf("failed to adjust quantity: %w", err)
	}
	return nil
}

// SoftDelete sets the deleted flag.
func (r *SQLInventoryRepository) SoftDelete(ctx context.Context, id int64, now time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		r.store.dialect.Rebind(`UPDATE inventory SET deleted = ?, updated_at = ? WHERE id = ?`),
		true, now, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete inventory item: %w", err)
	}
	return nil
}

// HardDelete physically removes the row.
func (r *SQLInventoryRepository) HardDelete(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, r.store.dialect.Rebind(`DELETE FROM inventory WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats returns statistics about the inventory database.
func (r *SQLInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total, deleted int64
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory").Scan(&total); err != nil {
		return nil, err
	}
	if err := r.store.db.QueryRowContext(ctx,
		r.store.dialect.Rebind("SELECT COUNT(*) FROM inventory WHERE deleted = ?"), true).Scan(&deleted); err != nil {
		return nil, err
	}
	stats["total_items"] = total
	stats["active_items"] = total - deleted
	stats["soft_deleted_items"] = deleted

	var below int64
	if err := r.store.db.QueryRowContext(ctx,
		r.store.dialect.Rebind("SELECT COUNT(*) FROM inventory WHERE deleted = ? AND quantity < min_stock"), false).Scan(&below); err == nil {
		stats["below_min_stock"] = below
	}

	var audits int64
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_audit").Scan(&audits); err != nil {
		return nil, err
	}
	stats["audit_records"] = audits

	var suppliers int64
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM suppliers").Scan(&suppliers); err == nil {
		stats["suppliers"] = suppliers
	}

	dbStats := r.store.PoolStats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Ensure SQLInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*SQLInventoryRepository)(nil)
