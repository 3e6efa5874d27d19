package repository

import (
	"context"
	"testing"
)

// NewTestStore opens a fresh in-memory SQLite store with the schema and seed data applied.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if _, err := EnsureSchema(context.Background(), store); err != nil {
		store.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}
