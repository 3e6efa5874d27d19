package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Request bodies are coerced loosely: numbers may arrive as strings, strings as
// numbers, and anything unparseable collapses to the zero value.

var jsonNull = []byte("null")

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// LooseString accepts any JSON scalar and keeps its text.
// false and numeric zero read as empty, like null.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case isNull(raw):
		*s = ""
	case len(raw) > 0 && raw[0] == '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case isFalsy(raw):
		*s = ""
	default:
		*s = LooseString(raw)
	}
	return nil
}

func isFalsy(raw []byte) bool {
	if string(raw) == "false" {
		return true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && f == 0
}

// Ptr returns nil for the empty string.
func (s LooseString) Ptr() *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

// LooseInt accepts numbers, numeric strings and booleans. Fractions truncate.
type LooseInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseInt) UnmarshalJSON(raw []byte) error {
	f := looseFloat(raw)
	// Values int64 cannot hold count as unparseable.
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		f = 0
	}
	*n = LooseInt(int64(f))
	return nil
}

func looseFloat(raw []byte) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return 0
	}
	switch raw[0] {
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case 't':
		return 1
	case 'f':
		return 0
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

// LooseDecimal accepts numbers and numeric strings without float rounding.
type LooseDecimal struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *LooseDecimal) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	d.Decimal = decimal.Zero
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	text := string(raw)
	switch raw[0] {
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		text = strings.TrimSpace(v)
	case 't':
		d.Decimal = decimal.NewFromInt(1)
		return nil
	case 'f':
		return nil
	}
	if v, err := decimal.NewFromString(text); err == nil {
		d.Decimal = v
	}
	return nil
}

// LooseBool accepts booleans, numbers and strings such as "true" or "1".
type LooseBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *LooseBool) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || isNull(raw):
		*b = false
	case raw[0] == 't':
		*b = true
	case raw[0] == 'f':
		*b = false
	case raw[0] == '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*b = LooseBool(parsed)
		} else {
			*b = v != ""
		}
	default:
		*b = looseFloat(raw) != 0
	}
	return nil
}

// CreateItemRequest is the POST /api/v1/inventory body.
type CreateItemRequest struct {
	Name       LooseString  `json:"name"`
	SKU        LooseString  `json:"sku"`
	Category   *LooseString `json:"category"`
	Quantity   LooseInt     `json:"quantity"`
	UnitPrice  LooseDecimal `json:"unit_price"`
	SupplierID LooseInt     `json:"supplier_id"`
	Location   LooseString  `json:"location"`
	MinStock   LooseInt     `json:"min_stock"`
	Notes      LooseString  `json:"notes"`
	Reason     LooseString  `json:"reason"`
}

// NewItem converts the request into insert values with defaults applied.
func (r *CreateItemRequest) NewItem() NewItem {
	item := NewItem{
		Name:      string(r.Name),
		SKU:       string(r.SKU),
		Quantity:  int64(r.Quantity),
		UnitPrice: r.UnitPrice.Decimal,
		Location:  string(r.Location),
		MinStock:  int64(r.MinStock),
		Notes:     string(r.Notes),
	}
	if r.Category != nil {
		c := string(*r.Category)
		item.Category = &c
	}
	if r.SupplierID != 0 {
		id := int64(r.SupplierID)
		item.SupplierID = &id
	}
	return item
}

// AdjustQuantityRequest is the PATCH /api/v1/inventory/{id}/quantity body.
type AdjustQuantityRequest struct {
	Delta  LooseInt    `json:"delta"`
	Reason LooseString `json:"reason"`
}

// ReasonRequest carries the optional reason of a DELETE body.
type ReasonRequest struct {
	Reason LooseString `json:"reason"`
}

// DecodeItemPatch picks the updatable fields out of a PUT body.
// A JSON null clears nullable columns; name and sku become nil so the caller
// can reject them. The returned reason is nil when absent or empty.
func DecodeItemPatch(body map[string]json.RawMessage) (ItemPatch, *string, error) {
	var reason *string
	if raw, ok := body["reason"]; ok {
		var s LooseString
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, nil, fmt.Errorf("reason: %w", err)
		}
		reason = s.Ptr()
	}

	patch := make(ItemPatch, 0, len(Updatable))
	for _, col := range Updatable {
		raw, ok := body[col]
		if !ok {
			continue
		}
		value, err := decodeColumn(col, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", col, err)
		}
		patch = append(patch, FieldUpdate{Column: col, Value: value})
	}
	return patch, reason, nil
}

func decodeColumn(col string, raw json.RawMessage) (interface{}, error) {
	switch col {
	case "name", "sku", "category", "location", "notes":
		if isNull(raw) {
			return nil, nil
		}
		var s LooseString
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return string(s), nil
	case "quantity", "min_stock":
		var n LooseInt
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return int64(n), nil
	case "supplier_id":
		var n LooseInt
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		return int64(n), nil
	case "unit_price":
		var d LooseDecimal
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d.Decimal, nil
	case "deleted":
		var b LooseBool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return bool(b), nil
	}
	return nil, fmt.Errorf("column %q is not updatable", col)
}
