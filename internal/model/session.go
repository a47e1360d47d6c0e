package model

import "time"

// SessionStatus is the lifecycle state of a dining session. Closing is
// terminal: a completed or cleared session is never reopened.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCleared   SessionStatus = "cleared"
)

// PaymentStatus applies to both orders and, as a convenience aggregate,
// to sessions. The order-level values are the truth; the session field is
// write-only from the ledger's point of view.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

// Valid reports whether p is one of the three recognized values.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}

// DiningSession is one occupancy period at a table. For a given table at
// most one session has Status == SessionActive at any instant.
type DiningSession struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TenantID      uint          `gorm:"not null;index" json:"tenant_id"`
	TableID       uint          `gorm:"not null;index" json:"table_id"`
	Status        SessionStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	StartedAt     time.Time     `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`

	// Associations
	Table Table `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
