package model

import "time"

// Supplier is a row of the suppliers table. Contact is free text, usually JSON.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   *string   `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}
