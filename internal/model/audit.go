package model

import (
	"encoding/json"
	"time"
)

// AuditAction names the kind of mutation an audit record describes.
type AuditAction string

const (
	ActionCreate     AuditAction = "CREATE"
	ActionUpdate     AuditAction = "UPDATE"
	ActionQtyAdjust  AuditAction = "QTY_ADJUST"
	ActionDelete     AuditAction = "DELETE"
	ActionSoftDelete AuditAction = "SOFT_DELETE"
)

// AuditRecord is one append-only row of inventory_audit.
// BeforeState and AfterState hold JSON snapshots of the item; "{}" when absent.
type AuditRecord struct {
	ID          int64           `json:"id"`
	InventoryID int64           `json:"inventory_id"`
	Action      AuditAction     `json:"action"`
	PerformedAt time.Time       `json:"performed_at"`
	BeforeState json.RawMessage `json:"before_state"`
	AfterState  json.RawMessage `json:"after_state"`
	Reason      *string         `json:"reason"`
}

// EmptySnapshot is stored when there is no before or after state.
var EmptySnapshot = json.RawMessage(`{}`)

// Snapshot serializes an item for an audit record.
func Snapshot(item *Item) (json.RawMessage, error) {
	if item == nil {
		return EmptySnapshot, nil
	}
	return json.Marshal(item)
}
