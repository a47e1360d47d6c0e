package model

import "time"

// MenuItem is the read-only slice of the catalog the ledger needs:
// a price and an availability flag, looked up by id.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	// No column default: a false value must be written out, not swallowed
	// by zero-value handling on insert.
	Available bool      `gorm:"not null" json:"available"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
