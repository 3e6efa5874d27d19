package repository

import (
	"context"
	"fmt"
	"time"

	"inventory-audit-api/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EnsureSchema creates the suppliers, inventory and inventory_audit tables and
// inserts seed data, but only when the store has no inventory table yet.
// On an existing store it changes nothing. It reports whether it initialized.
func EnsureSchema(ctx context.Context, s *Store) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.dialect.TableExistsQuery(), "inventory").Scan(&count); err != nil {
		return false, fmt.Errorf("checking schema: %w", err)
	}
	if count > 0 {
		log.Debug().Msg("schema already present, skipping initialization")
		return false, nil
	}

	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := seed(ctx, s); err != nil {
		return false, fmt.Errorf("seeding: %w", err)
	}

	log.Info().Str("dialect", s.dialect.Name()).Msg("schema created and seeded")
	return true, nil
}

func seed(ctx context.Context, s *Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Microsecond)

	contact := `{"phone":"9999999999"}`
	supplier := model.Supplier{Name: "Acme Supplies", Contact: &contact, CreatedAt: now}

	supplierID, err := s.insert(ctx, tx,
		`INSERT INTO suppliers (name, contact, created_at) VALUES (?, ?, ?)`,
		supplier.Name, supplier.Contact, supplier.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting supplier: %w", err)
	}

	widgets, gadgets := "Widgets", "Gadgets"
	items := []model.NewItem{
		{Name: "Widget A", SKU: "WIDGET-A-001", Category: &widgets, Quantity: 100,
			UnitPrice: decimal.RequireFromString("49.99"), SupplierID: &supplierID,
			Location: "WH-01-R01", MinStock: 10, Notes: "First batch"},
		{Name: "Gadget B", SKU: "GADGET-B-001", Category: &gadgets, Quantity: 50,
			UnitPrice: decimal.RequireFromString("79.50"), SupplierID: &supplierID,
			Location: "WH-02-R03", MinStock: 5, Notes: ""},
	}
	for _, it := range items {
		_, err := s.insert(ctx, tx,
			`INSERT INTO inventory (name, sku, category, quantity, unit_price, supplier_id, location, min_stock, notes, deleted, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.Name, it.SKU, it.Category, it.Quantity, it.UnitPrice,
			it.SupplierID, it.Location, it.MinStock, it.Notes, false, now, now)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
