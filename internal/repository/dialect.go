package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the supported SQL backends.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect interface {
	// Name returns the driver name registered with database/sql.
	Name() string

	// Rebind rewrites ? placeholders into the dialect's bind syntax.
	Rebind(query string) string

	// Schema returns the DDL statements that create the store, in order.
	Schema() []string

	// TableExistsQuery returns a query counting tables named by its one argument.
	TableExistsQuery() string

	// ReturningID reports whether inserts must use RETURNING id instead of LastInsertId.
	ReturningID() bool

	// IsUniqueViolation reports whether err is a unique-constraint failure.
	IsUniqueViolation(err error) bool
}

// DialectFor returns the dialect for an INVENTORY_DB_TYPE value.
func DialectFor(dbType string) (Dialect, error) {
	switch dbType {
	case "sqlite", "":
		return SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return PostgresDialect{}, nil
	case "mysql":
		return MySQLDialect{}, nil
	}
	return nil, errors.New("unknown database type: " + dbType)
}

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string           { return "sqlite" }
func (SQLiteDialect) Rebind(q string) string { return q }
func (SQLiteDialect) ReturningID() bool      { return false }
func (SQLiteDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
}

func (SQLiteDialect) Schema() []string {
	return []string{
		`CREATE TABLE suppliers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			contact TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE inventory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			category TEXT,
			quantity INTEGER NOT NULL DEFAULT 0,
			unit_price REAL NOT NULL DEFAULT 0,
			supplier_id INTEGER REFERENCES suppliers(id),
			location TEXT,
			min_stock INTEGER NOT NULL DEFAULT 0,
			notes TEXT,
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX idx_inventory_sku ON inventory(sku)`,
		`CREATE INDEX idx_inventory_location ON inventory(location)`,
		`CREATE TABLE inventory_audit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			inventory_id INTEGER,
			action TEXT NOT NULL,
			performed_at DATETIME NOT NULL,
			before_state TEXT,
			after_state TEXT,
			reason TEXT
		)`,
		`CREATE INDEX idx_inventory_audit_performed_at ON inventory_audit(performed_at)`,
	}
}

func (SQLiteDialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string      { return "postgres" }
func (PostgresDialect) ReturningID() bool { return true }
func (PostgresDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
}

// Rebind turns each ? into $1, $2, ...
func (PostgresDialect) Rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (PostgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE suppliers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			contact TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE inventory (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			category TEXT,
			quantity BIGINT NOT NULL DEFAULT 0,
			unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			supplier_id BIGINT REFERENCES suppliers(id),
			location TEXT,
			min_stock BIGINT NOT NULL DEFAULT 0,
			notes TEXT,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX idx_inventory_sku ON inventory(sku)`,
		`CREATE INDEX idx_inventory_location ON inventory(location)`,
		`CREATE TABLE inventory_audit (
			id BIGSERIAL PRIMARY KEY,
			inventory_id BIGINT,
			action TEXT NOT NULL,
			performed_at TIMESTAMPTZ NOT NULL,
			before_state TEXT,
			after_state TEXT,
			reason TEXT
		)`,
		`CREATE INDEX idx_inventory_audit_performed_at ON inventory_audit(performed_at)`,
	}
}

func (PostgresDialect) IsUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == "23505"
}

// MySQLDialect targets github.com/go-sql-driver/mysql. The DSN must set parseTime=true.
type MySQLDialect struct{}

func (MySQLDialect) Name() string           { return "mysql" }
func (MySQLDialect) Rebind(q string) string { return q }
func (MySQLDialect) ReturningID() bool      { return false }
func (MySQLDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
}

func (MySQLDialect) Schema() []string {
	return []string{
		`CREATE TABLE suppliers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			contact TEXT,
			created_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE inventory (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			sku VARCHAR(191) NOT NULL,
			category VARCHAR(255),
			quantity BIGINT NOT NULL DEFAULT 0,
			unit_price DECIMAL(12,2) NOT NULL DEFAULT 0,
			supplier_id BIGINT,
			location VARCHAR(191),
			min_stock BIGINT NOT NULL DEFAULT 0,
			notes TEXT,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE KEY uq_inventory_sku (sku),
			KEY idx_inventory_location (location),
			CONSTRAINT fk_inventory_supplier FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
		)`,
		`CREATE TABLE inventory_audit (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			inventory_id BIGINT,
			action VARCHAR(32) NOT NULL,
			performed_at DATETIME(6) NOT NULL,
			before_state LONGTEXT,
			after_state LONGTEXT,
			reason TEXT,
			KEY idx_inventory_audit_performed_at (performed_at)
		)`,
	}
}

func (MySQLDialect) IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
