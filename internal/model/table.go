package model

import "time"

// Table is a physical ordering point. It is identified by (tenant, label)
// and optionally carries the stable code printed on its QR sticker.
//
// CurrentSessionID is a weak back-reference: it may point at a session that
// has since been closed, or at nothing. Readers must re-check the session's
// status before treating it as the live one.
type Table struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TenantID         uint       `gorm:"not null;uniqueIndex:idx_tables_tenant_label" json:"tenant_id"`
	Label            string     `gorm:"size:64;not null;uniqueIndex:idx_tables_tenant_label" json:"label"`
	CodeID           string     `gorm:"size:64;index" json:"code_id,omitempty"`
	CurrentSessionID *uint      `json:"current_session_id,omitempty"`
	LastSeenAt       *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`

	// Associations
	Tenant Tenant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
