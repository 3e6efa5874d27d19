package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// DuplicateSKUError reports a unique-constraint violation on inventory.sku.
type DuplicateSKUError struct {
	SKU string
	Err error
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("sku %q already exists", e.SKU)
}

func (e *DuplicateSKUError) Unwrap() error {
	return e.Err
}
