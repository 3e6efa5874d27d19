package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// unit_price goes over the wire as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a row of the inventory table.
type Item struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Category   *string         `json:"category"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	SupplierID *int64          `json:"supplier_id"`
	Location   *string         `json:"location"`
	MinStock   int64           `json:"min_stock"`
	Notes      *string         `json:"notes"`
	Deleted    bool            `json:"deleted"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ItemFilter narrows List. Empty fields are ignored.
type ItemFilter struct {
	Category string
	Location string
	Query    string // substring of name or sku
}

// NewItem holds the insert values for a new inventory row, defaults applied.
type NewItem struct {
	Name       string `validate:"required"`
	SKU        string `validate:"required"`
	Category   *string
	Quantity   int64
	UnitPrice  decimal.Decimal
	SupplierID *int64
	Location   string
	MinStock   int64
	Notes      string
}

// FieldUpdate sets one inventory column to a value.
type FieldUpdate struct {
	Column string
	Value  interface{}
}

// ItemPatch is an ordered set of column updates.
type ItemPatch []FieldUpdate

// Columns lists the columns touched by the patch.
func (p ItemPatch) Columns() []string {
	cols := make([]string, len(p))
	for i, f := range p {
		cols[i] = f.Column
	}
	return cols
}

// Updatable lists the inventory columns a PUT may change, in statement order.
var Updatable = []string{
	"name", "sku", "category", "quantity", "unit_price",
	"supplier_id", "location", "min_stock", "notes", "deleted",
}
