package model

import "time"

// PushSubscription holds a staff dashboard's browser push subscription.
// A subscription watches specific tables; when one of them gets its first
// ready order the endpoint is notified.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	TenantID  uint      `gorm:"not null;index"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Tables []*Table `gorm:"many2many:subscription_table_mapping;"`
}
